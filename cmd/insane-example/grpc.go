package main

import (
	gogrpc "google.golang.org/grpc"

	"github.com/kbukum/insane/grpc"
	"github.com/kbukum/insane/logger"
)

// registerServices is where generated service implementations are
// registered. The example serves only health and reflection.
func registerServices(srv *gogrpc.Server, sc *grpc.Context) error {
	logger.WithComponent("example").Debug("grpc services registered", logger.Fields(
		"server", sc.ServerName(),
		"services", len(srv.GetServiceInfo()),
	))
	return nil
}
