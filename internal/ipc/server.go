package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mj1618/uia-provider/internal/api"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// Token, when set, must be presented as "Authorization: Bearer <token>".
	Token string
	// CallsPerSecond limits calls per connection. 0 disables the limit.
	CallsPerSecond float64
	// Burst is the limiter burst size. Defaults to 1.
	Burst     int
	WriteWait time.Duration
	Logger    zerolog.Logger
}

// Server exposes a provider on /ws. Calls on one connection run
// concurrently; replies may arrive out of order and are matched by ID.
type Server struct {
	provider api.Provider
	opts     ServerOptions
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewServer returns a server for p.
func NewServer(p api.Provider, opts ServerOptions) *Server {
	if opts.WriteWait == 0 {
		opts.WriteWait = 5 * time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Server{
		provider: p,
		opts:     opts,
		log:      opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.requireToken(http.HandlerFunc(s.HandleWS)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	if s.opts.Token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") != s.opts.Token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// HandleWS serves one websocket connection.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := s.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")
	defer log.Info().Msg("client disconnected")

	var limiter *rate.Limiter
	if s.opts.CallsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.CallsPerSecond), s.opts.Burst)
	}

	var writeMu sync.Mutex
	reply := func(res Result) {
		msg, err := json.Marshal(res)
		if err != nil {
			log.Error().Err(err).Str("id", res.ID).Msg("encode result")
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Str("id", res.ID).Msg("write result")
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var call Call
		if err := json.Unmarshal(message, &call); err != nil {
			log.Warn().Err(err).Msg("invalid call frame")
			continue
		}
		if call.ID == "" {
			log.Warn().Str("method", call.Method).Msg("call without id")
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		go func(call Call) {
			start := time.Now()
			res := Dispatch(s.provider, call)
			if res.Error != "" {
				log.Warn().Str("method", call.Method).Str("id", call.ID).Str("error", res.Error).Msg("call failed")
			}
			log.Debug().Str("method", call.Method).Str("id", call.ID).Dur("elapsed", time.Since(start)).Bool("ok", res.OK).Msg("call")
			reply(res)
		}(call)
	}
}
