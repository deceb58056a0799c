// Package redis provides the optional Redis connection of an application.
//
// The connection is configured by URI under the `redis` key and is only
// opened when that URI is set:
//
//	redis:
//	  uri: redis://:secret@localhost:6379/0
//	  pool_size: 20
//
// Component registers the client with the component registry so it is
// started with the application context and stopped on shutdown.
// TypedStore layers JSON-encoded values of a single type on top of Client:
//
//	sessions := redis.NewTypedStore[Session](client, "sessions")
//	err := sessions.Save(ctx, id, &session, 30*time.Minute)
package redis
