package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

func TestDispatchInvokesMatchingHandlers(t *testing.T) {
	s := NewSubscriber(WithURL("ws://unused"))

	var approved, rejected atomic.Int32
	s.On(models.EventDocumentApproved, func(models.Event) { approved.Add(1) })
	s.On(models.EventDocumentRejected, func(models.Event) { rejected.Add(1) })

	payload, _ := json.Marshal(models.Event{Kind: models.EventDocumentApproved, DocumentType: "passport"})
	s.Dispatch(payload)
	if approved.Load() != 1 || rejected.Load() != 0 {
		t.Errorf("dispatch counts: approved=%d rejected=%d", approved.Load(), rejected.Load())
	}
}

func TestDispatchIsIdempotentForIdempotentHandlers(t *testing.T) {
	s := NewSubscriber(WithURL("ws://unused"))

	// The handler contract is re-fetch + re-render; model that as writing a
	// final state rather than accumulating.
	var state atomic.Value
	s.On(models.EventAllDocumentsApproved, func(ev models.Event) {
		state.Store("documents-approved:" + ev.Token)
	})

	payload, _ := json.Marshal(models.Event{Kind: models.EventAllDocumentsApproved, Token: "tok_abc"})
	s.Dispatch(payload)
	after := state.Load()
	s.Dispatch(payload)
	if state.Load() != after {
		t.Error("duplicate delivery changed the final state")
	}
	if state.Load() != "documents-approved:tok_abc" {
		t.Errorf("unexpected state %v", state.Load())
	}
}

func TestDispatchDropsGarbage(t *testing.T) {
	s := NewSubscriber(WithURL("ws://unused"))
	s.On(models.EventPaymentApproved, func(models.Event) { t.Error("handler invoked for garbage") })
	s.Dispatch([]byte("{broken"))
	s.Dispatch([]byte(`{"event":""}`))
}

func TestRunJoinsRoomAndDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan models.JoinMessage, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var join models.JoinMessage
		if err := conn.ReadJSON(&join); err != nil {
			t.Errorf("no join message: %v", err)
			return
		}
		received <- join

		conn.WriteJSON(models.Event{Kind: models.EventPaymentApproved, Token: "tok_abc"})
		// Hold the connection open briefly so the client reads the event.
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	s := NewSubscriber(WithURL(url), WithVerificationRoom("tok_abc"), WithReconnectDelay(time.Hour))

	got := make(chan models.Event, 1)
	s.On(models.EventPaymentApproved, func(ev models.Event) { got <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case join := <-received:
		if join.Action != models.JoinVerification || join.Token != "tok_abc" {
			t.Errorf("unexpected join %+v", join)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received join message")
	}

	select {
	case ev := <-got:
		if ev.Token != "tok_abc" {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered to handler")
	}
}
