// Package server pushes live simulation snapshots to websocket clients
// and accepts forcing adjustments back, one independent model per
// connection.
package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/ebmlab/internal/config"
	"github.com/san-kum/ebmlab/internal/driver"
)

type Server struct {
	addr     string
	cfg      *config.Config
	upgrader websocket.Upgrader
}

func New(addr string, cfg *config.Config) *Server {
	return &Server{
		addr: addr,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 8192,
		},
	}
}

// serveWS upgrades the request and runs a dedicated session hub.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	loop, err := driver.New(s.cfg.Bands, s.cfg.Physics, s.cfg.DriverConfig())
	if err != nil {
		logrus.WithError(err).Error("loop construction failed")
		return
	}
	if s.cfg.SolarScale != 1.0 {
		loop.SetSolarScale(s.cfg.SolarScale)
	}
	if s.cfg.Greenhouse != 0 {
		loop.SetGreenhouse(s.cfg.Greenhouse)
	}

	logrus.WithField("remote", r.RemoteAddr).Info("client connected")
	NewHub(conn, loop).Run()
	logrus.WithField("remote", r.RemoteAddr).Info("client disconnected")
}

func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)

	logrus.WithField("addr", s.addr).Info("serving snapshots")
	return http.ListenAndServe(s.addr, mux)
}
