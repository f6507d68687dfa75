// internal/browser/session/fakebrowser_test.go
package session

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	jsoniter "github.com/json-iterator/go"
)

// cdpMessage is the wire shape of one CDP command or response.
type cdpMessage struct {
	ID        int64               `json:"id,omitempty"`
	Method    string              `json:"method,omitempty"`
	SessionID string              `json:"sessionId,omitempty"`
	Params    jsoniter.RawMessage `json:"params,omitempty"`
	Result    jsoniter.RawMessage `json:"result,omitempty"`
}

// fakeBrowser serves the DevTools discovery documents and answers CDP
// commands over a websocket, recording every method it receives.
type fakeBrowser struct {
	srv   *httptest.Server
	pages []string

	mu       sync.Mutex
	commands []cdpMessage
	conns    []net.Conn
	active   atomic.Int32
}

func newFakeBrowser(t *testing.T, pages ...string) *fakeBrowser {
	t.Helper()
	f := &fakeBrowser{pages: pages}

	mux := http.NewServeMux()
	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"Browser":"HeadlessChrome/140.0","webSocketDebuggerUrl":"ws://%s/devtools/browser/fake"}`, r.Host)
	})
	mux.HandleFunc("/json/list", func(w http.ResponseWriter, r *http.Request) {
		list := make([]targetInfo, 0, len(f.pages))
		for _, id := range f.pages {
			list = append(list, targetInfo{
				ID:                   id,
				Type:                 "page",
				URL:                  "https://www.bing.com/",
				WebSocketDebuggerURL: fmt.Sprintf("ws://%s/devtools/page/%s", r.Host, id),
			})
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/devtools/browser/fake", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		f.serve(conn)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(func() {
		f.dropConnections()
		f.srv.Close()
	})
	return f
}

// Endpoint is the host:port of the debug surface.
func (f *fakeBrowser) Endpoint() string { return f.srv.Listener.Addr().String() }

func (f *fakeBrowser) serve(conn net.Conn) {
	f.active.Add(1)
	defer f.active.Add(-1)
	defer conn.Close()

	for {
		data, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			return
		}
		if op != ws.OpText {
			continue
		}
		var msg cdpMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, msg)
		f.mu.Unlock()

		out, err := json.Marshal(cdpMessage{ID: msg.ID, SessionID: msg.SessionID, Result: reply(msg)})
		if err != nil {
			return
		}
		if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
			return
		}
	}
}

func reply(msg cdpMessage) jsoniter.RawMessage {
	switch msg.Method {
	case "Target.attachToTarget":
		var p struct {
			TargetID string `json:"targetId"`
		}
		_ = json.Unmarshal(msg.Params, &p)
		return jsoniter.RawMessage(fmt.Sprintf(`{"sessionId":"session-%s"}`, p.TargetID))
	case "Target.createTarget":
		return jsoniter.RawMessage(`{"targetId":"NEWTAB"}`)
	case "Runtime.evaluate":
		return jsoniter.RawMessage(`{"result":{"type":"object","className":"Window"}}`)
	case "Page.getFrameTree":
		return jsoniter.RawMessage(`{"frameTree":{"frame":{"id":"FRAME1","loaderId":"LOADER1","url":"https://www.bing.com/","securityOrigin":"https://www.bing.com","mimeType":"text/html"}}}`)
	case "DOM.getDocument":
		return jsoniter.RawMessage(`{"root":{"nodeId":1,"backendNodeId":1,"nodeType":9,"nodeName":"#document","localName":"","nodeValue":""}}`)
	case "Target.closeTarget":
		return jsoniter.RawMessage(`{"success":true}`)
	default:
		return jsoniter.RawMessage(`{}`)
	}
}

// Methods returns the CDP methods received so far, in order.
func (f *fakeBrowser) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, c := range f.commands {
		out[i] = c.Method
	}
	return out
}

// AttachedTargets returns the targetId of every Target.attachToTarget call.
func (f *fakeBrowser) AttachedTargets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.commands {
		if c.Method != "Target.attachToTarget" {
			continue
		}
		var p struct {
			TargetID string `json:"targetId"`
		}
		_ = json.Unmarshal(c.Params, &p)
		out = append(out, p.TargetID)
	}
	return out
}

// ActiveConnections is the number of websockets still being served.
func (f *fakeBrowser) ActiveConnections() int { return int(f.active.Load()) }

// dropConnections closes every websocket from the browser side.
func (f *fakeBrowser) dropConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	f.conns = nil
}
