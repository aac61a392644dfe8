package viz

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
)

type ImageContainer struct {
	name string
	data []byte
}

// Producer is anything that can render itself to a PNG on demand.
type Producer interface {
	Name() string
	GetImage() *ImageContainer
}

// Server periodically re-renders its registered producers and serves the
// images over HTTP with a small auto-refreshing index page.
type Server struct {
	mu             sync.RWMutex
	producers      map[string]Producer
	images         map[string]*ImageContainer
	srv            *http.Server
	updateInterval time.Duration
}

func NewServer(port int, updateInterval time.Duration) *Server {
	return &Server{
		producers:      make(map[string]Producer),
		images:         make(map[string]*ImageContainer),
		srv:            &http.Server{Addr: fmt.Sprintf(":%d", port)},
		updateInterval: updateInterval,
	}
}

func (s *Server) Register(p Producer) {
	s.mu.Lock()
	s.producers[p.Name()] = p
	s.mu.Unlock()
}

func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

func (s *Server) render() {
	s.mu.RLock()
	producers := make([]Producer, 0, len(s.producers))
	for _, p := range s.producers {
		producers = append(producers, p)
	}
	s.mu.RUnlock()

	for _, p := range producers {
		img := p.GetImage()
		if img == nil {
			continue
		}
		s.mu.Lock()
		s.images[img.name] = img
		s.mu.Unlock()
	}
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.updateInterval):
				s.render()
			}
		}
	}()

	handler := httprouter.New()
	handler.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s.mu.RLock()
		names := make([]string, 0, len(s.producers))
		for name := range s.producers {
			names = append(names, name)
		}
		s.mu.RUnlock()
		sort.Strings(names)

		w.Header().Add("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>simradio viz</title></head>`))
		w.Write([]byte(fmt.Sprintf(`
		<script type="text/javascript">
			window.onload = function() {
				var imgs = document.getElementsByTagName('img');
				for (var i = 0; i < imgs.length; i++) {
					setInterval(function(image) {
						image.src = image.src.split("?")[0] + "?" + new Date().getTime();
					}, %d, imgs[i]);
				}
			}
		</script>`, s.updateInterval.Milliseconds())))
		w.Write([]byte(`<body style='background-color: black'>`))
		w.Write([]byte(`<div style="display: flex; flex-direction: row; flex-wrap: wrap">`))
		for _, name := range names {
			w.Write([]byte(fmt.Sprintf(`<div><img src="/img/%s?%d" /></div>`, name, time.Now().UnixMicro())))
		}
		w.Write([]byte(`</div></body></html>`))
	})

	handler.GET("/img/:img", func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		s.mu.RLock()
		img, ok := s.images[params.ByName("img")]
		s.mu.RUnlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Add("Content-Type", "image/png")
		w.Write(img.data)
	})

	s.srv.Handler = handler

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
