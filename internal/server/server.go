package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/berfenger/descview/internal/config"
	"github.com/berfenger/descview/internal/core/port"
	"github.com/berfenger/descview/internal/ticket"
	"github.com/berfenger/descview/internal/units"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type Server struct {
	port           uint
	httpLog        bool
	precision      int
	requestTimeout time.Duration
	rootContext    *actor.RootContext
	masterActor    *actor.PID
	tickets        *ticket.Service
	formatter      port.UnitFormatter
	dataTypes      port.LabelLookup
	accessRights   port.LabelLookup
	logger         *zap.Logger
}

func newServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID, tickets *ticket.Service, logger *zap.Logger) *Server {
	return &Server{
		port:           cfg.Port,
		httpLog:        cfg.HttpLog,
		precision:      cfg.Units.Precision,
		requestTimeout: cfg.Compare.FetchTimeout() + 3*time.Second,
		rootContext:    rootContext,
		masterActor:    masterActor,
		tickets:        tickets,
		formatter:      units.NewFormatter(),
		dataTypes:      units.NewDataTypeLookup(),
		accessRights:   units.NewAccessRightsLookup(),
		logger:         logger.With(zap.String("component", "http")),
	}
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID, tickets *ticket.Service, logger *zap.Logger) *http.Server {
	NewServer := newServer(cfg, rootContext, masterActor, tickets, logger)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
