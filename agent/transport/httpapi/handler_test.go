package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

type fakeService struct {
	mu       sync.Mutex
	sessions map[string]statex.History
	ended    []string
	tokens   []string
	turnErr  error
}

func newFakeService() *fakeService {
	return &fakeService{sessions: map[string]statex.History{}, tokens: []string{"Hello", ", ", "world"}}
}

func (f *fakeService) StartSession(ctx context.Context, sessionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID] = statex.History{}
	return "Welcome!", nil
}

func (f *fakeService) HandleMessage(ctx context.Context, sessionID, text string, sink contractx.StreamSink) (contractx.TurnResult, error) {
	if f.turnErr != nil {
		return contractx.TurnResult{}, f.turnErr
	}
	if strings.TrimSpace(text) == "" {
		return contractx.TurnResult{}, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	}
	var reply strings.Builder
	for _, tok := range f.tokens {
		if err := sink.Send(ctx, tok); err != nil {
			return contractx.TurnResult{}, contractx.ErrTurnCanceled
		}
		reply.WriteString(tok)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionID] = f.sessions[sessionID].Append(
		statex.UserMessage(text),
		statex.AssistantMessage("JobAgent", reply.String()),
	)
	return contractx.TurnResult{SessionID: sessionID, Specialist: "JobAgent", Reply: reply.String()}, nil
}

func (f *fakeService) EndSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.ended = append(f.ended, sessionID)
	return nil
}

func (f *fakeService) History(ctx context.Context, sessionID string) (statex.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrSessionNotFound, sessionID)
	}
	return h.Clone(), nil
}

func (f *fakeService) endedSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ended...)
}

func newTestServer(t *testing.T, svc Service) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(svc, Config{}, promhttp.Handler()))
	t.Cleanup(srv.Close)
	return srv
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	var (
		events []sseEvent
		cur    sseEvent
	)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if cur.name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeService())

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var started startSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	assert.NotEmpty(t, started.SessionID)
	assert.Equal(t, "Welcome!", started.Welcome)

	msg, err := http.Post(srv.URL+"/sessions/"+started.SessionID+"/messages", "application/json",
		strings.NewReader(`{"message":"What jobs pay well?"}`))
	require.NoError(t, err)
	defer msg.Body.Close()
	require.Equal(t, http.StatusOK, msg.StatusCode)
	assert.Equal(t, "text/event-stream", msg.Header.Get("Content-Type"))

	events := readEvents(t, msg)
	require.Len(t, events, 4)
	var text strings.Builder
	for _, ev := range events[:3] {
		assert.Equal(t, "token", ev.name)
		var tok string
		require.NoError(t, json.Unmarshal([]byte(ev.data), &tok))
		text.WriteString(tok)
	}
	assert.Equal(t, "done", events[3].name)
	var res contractx.TurnResult
	require.NoError(t, json.Unmarshal([]byte(events[3].data), &res))
	assert.Equal(t, text.String(), res.Reply)

	hist, err := http.Get(srv.URL + "/sessions/" + started.SessionID + "/history")
	require.NoError(t, err)
	defer hist.Body.Close()
	var body historyResponse
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&body))
	assert.Len(t, body.History, 2)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+started.SessionID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(srv.URL + "/sessions/" + started.SessionID + "/history")
	require.NoError(t, err)
	defer gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestStartSessionWithClientID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeService())
	resp, err := http.Post(srv.URL+"/sessions", "application/json", strings.NewReader(`{"session_id":"abc"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var started startSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	assert.Equal(t, "abc", started.SessionID)
}

func TestPostMessageRejectsBadInput(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeService())
	for _, body := range []string{`{"message":"  "}`, `not json`} {
		resp, err := http.Post(srv.URL+"/sessions/s1/messages", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestPostMessageInternalErrorIsOpaque(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	svc.turnErr = fmt.Errorf("redis: connection refused")
	srv := newTestServer(t, svc)

	resp, err := http.Post(srv.URL+"/sessions/s1/messages", "application/json", strings.NewReader(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	events := readEvents(t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)
	assert.NotContains(t, events[0].data, "redis")
}

func TestWebsocketChat(t *testing.T) {
	t.Parallel()

	svc := newFakeService()
	srv := newTestServer(t, svc)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/ws1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	var welcome Frame
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, FrameWelcome, welcome.Type)
	assert.Equal(t, "Welcome!", welcome.Text)

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameMessage, Text: "hi"}))

	var text strings.Builder
	for {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == FrameDone {
			require.NotNil(t, f.Result)
			assert.Equal(t, text.String(), f.Result.Reply)
			break
		}
		require.Equal(t, FrameToken, f.Type)
		text.WriteString(f.Text)
	}
	assert.Equal(t, "Hello, world", text.String())

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameMessage, Text: " "}))
	var errFrame Frame
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, FrameError, errFrame.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		ended := svc.endedSessions()
		return len(ended) == 1 && ended[0] == "ws1"
	}, time.Second, 10*time.Millisecond)
}

func TestIsOriginAllowed(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://mentor.local/sessions/x/ws", nil)
	assert.True(t, isOriginAllowed(r, nil))

	r.Header.Set("Origin", "http://mentor.local")
	assert.True(t, isOriginAllowed(r, nil))

	r.Header.Set("Origin", "http://evil.example")
	assert.False(t, isOriginAllowed(r, nil))
	assert.True(t, isOriginAllowed(r, []string{"http://evil.example"}))
	assert.True(t, isOriginAllowed(r, []string{"*"}))
}
