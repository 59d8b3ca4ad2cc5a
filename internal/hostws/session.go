package hostws

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ivlev/carousel/internal/engine"
	"github.com/ivlev/carousel/internal/renderer"
	"github.com/ivlev/carousel/internal/slides"
)

// Session upgrades to a websocket and runs one carousel for the connection
// GET /ws/carousels/{name}?slides=5&width=1280&height=720
// GET /ws/carousels/{name}?ids=a,b,c&width=1280&height=720
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cfg, ok := h.presets.Get(name)
	if !ok {
		http.Error(w, "carousel not found", http.StatusNotFound)
		return
	}
	set, err := h.slideSet(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vp := renderer.Viewport{Width: queryInt(r, "width", 1280), Height: queryInt(r, "height", 720)}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[!] WebSocket upgrade failed: %v", err)
		return
	}
	s := &session{conn: conn}
	defer conn.Close()

	eng, err := engine.Create(cfg, set, engine.Options{Clock: h.clock, Viewport: vp, Logger: h.logger})
	if err != nil {
		s.send(ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	defer eng.Destroy()

	eng.OnChange(func(c engine.Change) {
		s.send(ServerMessage{Type: "change", Change: viewOfChange(c)})
	})
	eng.OnBreakpoint(func(c engine.BreakpointChange) {
		s.send(ServerMessage{Type: "breakpoint", Breakpoint: &BreakpointView{
			MinWidth: c.MinWidth, Active: c.Active, Config: viewOfConfig(c.Config),
		}})
	})

	h.logger.Printf("[*] session %s: %d slides, viewport %dx%d", name, set.Len(), vp.Width, vp.Height)
	s.send(ServerMessage{Type: "hello", Slides: set.IDs(), State: stateOf(eng)})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("[!] session %s: read: %v", name, err)
			}
			return
		}
		if err := h.dispatch(eng, msg, s); err != nil {
			s.send(ServerMessage{Type: "error", Error: err.Error()})
		}
	}
}

func (h *Handler) dispatch(eng *engine.Engine, msg ClientMessage, s *session) error {
	var err error
	switch msg.Op {
	case "next":
		_, err = eng.Next()
	case "prev":
		_, err = eng.Prev()
	case "goTo":
		_, err = eng.GoTo(msg.Index)
	case "viewport":
		err = eng.SetViewport(renderer.Viewport{Width: msg.Width, Height: msg.Height})
	case "pause":
		err = eng.PauseAutoplay()
	case "resume":
		err = eng.ResumeAutoplay()
	case "stop":
		err = eng.StopAutoplay()
	case "frames":
		frames, ferr := eng.Frames()
		if ferr != nil {
			return ferr
		}
		return s.send(ServerMessage{Type: "frames", Frames: viewOfFrames(frames), State: stateOf(eng)})
	default:
		return fmt.Errorf("unknown op %q", msg.Op)
	}
	if err != nil {
		return err
	}
	return s.send(ServerMessage{Type: "state", State: stateOf(eng)})
}

func (h *Handler) slideSet(r *http.Request) (slides.Set, error) {
	if ids := r.URL.Query().Get("ids"); ids != "" {
		parts := strings.Split(ids, ",")
		out := make([]slides.ID, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, slides.ID(p))
			}
		}
		if len(out) > h.maxSlides {
			return slides.Set{}, fmt.Errorf("at most %d slides", h.maxSlides)
		}
		return slides.NewSet(out...), nil
	}
	n := queryInt(r, "slides", 5)
	if n < 0 || n > h.maxSlides {
		return slides.Set{}, fmt.Errorf("slides must be within [0, %d]", h.maxSlides)
	}
	return slides.Numbered(n), nil
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func stateOf(eng *engine.Engine) *StateView {
	st, err := eng.State()
	if err != nil {
		return nil
	}
	pos, _ := eng.Position()
	auto, _ := eng.AutoplayState()
	return &StateView{
		ActiveIndex:    st.ActiveIndex,
		Transitioning:  st.Transitioning,
		AutoplayPaused: st.AutoplayPaused,
		Autoplay:       auto.String(),
		Position:       pos,
	}
}

// session serialises writes; observers fire from clock goroutines.
type session struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

var errSessionClosed = errors.New("session closed")

func (s *session) send(msg ServerMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.closed = true
		return err
	}
	return nil
}
