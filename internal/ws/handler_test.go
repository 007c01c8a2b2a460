package ws

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/carriee-liuu/anomia-go/internal/dependencies/mocks"
	"github.com/carriee-liuu/anomia-go/internal/model"
	"github.com/carriee-liuu/anomia-go/internal/services/room"
	"github.com/carriee-liuu/anomia-go/internal/services/session"
	"github.com/carriee-liuu/anomia-go/internal/storage/memory"
	"github.com/carriee-liuu/anomia-go/internal/testutil"
)

type HandlerSuite struct {
	suite.Suite
	storage    *memory.Storage
	random     *mocks.MockRandom
	controller *room.Controller
	handler    *GameHandler
	manager    *HubManager
	server     *httptest.Server
	ctx        context.Context

	conns   []*websocket.Conn
	cardSeq int
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	sessions := session.New(s.random)
	s.controller = room.NewController(s.storage, sessions, clk, s.random, room.DefaultConfig())
	s.manager = NewHubManager(logger)
	s.handler = NewGameHandler(s.controller, s.manager, 200*time.Millisecond, logger)
	s.ctx = context.Background()
	s.cardSeq = 0

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := model.RoomCode(strings.TrimPrefix(r.URL.Path, "/ws/"))
		ServeWS(w, r, code, s.handler, logger)
	}))
}

func (s *HandlerSuite) TearDownTest() {
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
	s.server.Close()
}

func (s *HandlerSuite) dial(code model.RoomCode) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/" + string(code)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	s.conns = append(s.conns, conn)
	return conn
}

func (s *HandlerSuite) send(conn *websocket.Conn, msg string) {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

// readEvent reads the next event from the connection, failing the test
// if none arrives in time
func (s *HandlerSuite) readEvent(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var event map[string]any
	s.Require().NoError(conn.ReadJSON(&event))
	return event
}

func (s *HandlerSuite) expectEvent(conn *websocket.Conn, eventType EventType) map[string]any {
	event := s.readEvent(conn)
	s.Require().Equal(string(eventType), event["type"], "unexpected event %v", event)
	return event
}

func (s *HandlerSuite) card(shape model.Shape) model.Card {
	s.cardSeq++
	return model.Card{
		ID:       model.CardID(fmt.Sprintf("card-%d", s.cardSeq)),
		Shape:    shape,
		Category: "Dog Breeds",
	}
}

// setPile replaces the room's draw pile, first card listed drawn first
func (s *HandlerSuite) setPile(code model.RoomCode, cards ...model.Card) {
	r, err := s.storage.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	pile := make([]model.Card, len(cards))
	for i, c := range cards {
		pile[len(cards)-1-i] = c
	}
	r.DrawPile = pile
}

func (s *HandlerSuite) TestConnectToMissingRoomRejected() {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws/NOPE22"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	s.Error(err)
	s.Nil(conn)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *HandlerSuite) TestJoinAndReceiveRoster() {
	s.random.QueueString("ABC234")
	host, err := s.controller.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)
	code := host.Room.Code

	alice := s.dial(code)
	s.send(alice, fmt.Sprintf(`{"type":"joinRoom","name":"Alice","sessionToken":%q}`, host.SessionToken))
	joined := s.expectEvent(alice, EventRoomJoined)
	s.Equal(true, joined["reconnected"])
	s.Equal(host.SessionToken, joined["sessionToken"])

	bob := s.dial(code)
	s.send(bob, `{"type":"joinRoom","name":"Bob"}`)
	bobJoined := s.expectEvent(bob, EventRoomJoined)
	s.Equal(false, bobJoined["reconnected"])

	// Both connections learn about Bob; Bob's own roomJoined came first
	s.expectEvent(alice, EventPlayerJoined)
	s.expectEvent(bob, EventPlayerJoined)
}

func (s *HandlerSuite) TestErrorsGoToSenderOnly() {
	s.random.QueueString("ABC234")
	host, err := s.controller.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)
	code := host.Room.Code

	alice := s.dial(code)
	s.send(alice, fmt.Sprintf(`{"type":"joinRoom","name":"Alice","sessionToken":%q}`, host.SessionToken))
	s.expectEvent(alice, EventRoomJoined)

	bob := s.dial(code)
	s.send(bob, `{"type":"joinRoom","name":"Bob"}`)
	s.expectEvent(bob, EventRoomJoined)
	s.expectEvent(bob, EventPlayerJoined)
	s.expectEvent(alice, EventPlayerJoined)

	// Bob is not the host; only Bob hears about it
	s.send(bob, `{"type":"startGame"}`)
	errEvent := s.expectEvent(bob, EventError)
	s.Equal("NOT_HOST", errEvent["code"])

	// Alice's next event must be the real game start, not Bob's failure
	s.send(alice, `{"type":"startGame"}`)
	s.expectEvent(alice, EventGameStarted)
	s.expectEvent(bob, EventGameStarted)
}

func (s *HandlerSuite) TestUnknownCommandRejected() {
	s.random.QueueString("ABC234")
	host, err := s.controller.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)

	alice := s.dial(host.Room.Code)
	s.send(alice, `{"type":"selfDestruct"}`)
	errEvent := s.expectEvent(alice, EventError)
	s.Equal("INVALID_REQUEST", errEvent["code"])
}

func (s *HandlerSuite) TestDisconnectBroadcastsRepairAndLeave() {
	s.random.QueueString("ABC234")
	host, err := s.controller.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)
	code := host.Room.Code

	alice := s.dial(code)
	s.send(alice, fmt.Sprintf(`{"type":"joinRoom","name":"Alice","sessionToken":%q}`, host.SessionToken))
	s.expectEvent(alice, EventRoomJoined)

	bob := s.dial(code)
	s.send(bob, `{"type":"joinRoom","name":"Bob"}`)
	bobJoined := s.expectEvent(bob, EventRoomJoined)
	bobID := bobJoined["player"].(map[string]any)["id"].(string)
	s.expectEvent(alice, EventPlayerJoined)
	s.expectEvent(bob, EventPlayerJoined)

	s.send(alice, `{"type":"startGame"}`)
	s.expectEvent(alice, EventGameStarted)
	s.expectEvent(bob, EventGameStarted)

	s.setPile(code,
		s.card(model.ShapeCircle),
		s.card(model.ShapeStar),
	)

	// Alice flips, handing the turn to Bob
	s.send(alice, `{"type":"flipCard"}`)
	s.expectEvent(alice, EventCardFlipped)
	s.expectEvent(bob, EventCardFlipped)

	// Bob's connection dies mid-turn; Alice learns immediately and the
	// snapshot shows the turn handed back to her
	s.Require().NoError(bob.Close())
	disconnected := s.expectEvent(alice, EventPlayerDisconnected)
	s.Equal(bobID, disconnected["playerId"])
	snapshot := disconnected["room"].(map[string]any)
	s.Equal(float64(0), snapshot["currentPlayerIndex"])
	s.Equal(false, snapshot["players"].([]any)[1].(map[string]any)["connected"])

	// After the grace period the seat is released for good
	left := s.expectEvent(alice, EventPlayerLeft)
	s.Equal(bobID, left["playerId"])
}

func (s *HandlerSuite) TestFullGameOverWire() {
	s.random.QueueString("ABC234")
	host, err := s.controller.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)
	code := host.Room.Code

	alice := s.dial(code)
	s.send(alice, fmt.Sprintf(`{"type":"joinRoom","name":"Alice","sessionToken":%q}`, host.SessionToken))
	aliceJoined := s.expectEvent(alice, EventRoomJoined)
	aliceID := aliceJoined["player"].(map[string]any)["id"].(string)

	bob := s.dial(code)
	s.send(bob, `{"type":"joinRoom","name":"Bob"}`)
	bobJoined := s.expectEvent(bob, EventRoomJoined)
	bobID := bobJoined["player"].(map[string]any)["id"].(string)
	s.expectEvent(alice, EventPlayerJoined)
	s.expectEvent(bob, EventPlayerJoined)

	s.send(alice, `{"type":"startGame"}`)
	s.expectEvent(alice, EventGameStarted)
	s.expectEvent(bob, EventGameStarted)

	s.setPile(code,
		s.card(model.ShapeCircle),
		s.card(model.ShapeCircle),
	)

	// Alice flips; no match against an empty opponent board
	s.send(alice, `{"type":"flipCard"}`)
	s.expectEvent(alice, EventCardFlipped)
	s.expectEvent(bob, EventCardFlipped)

	// Bob flips the matching circle
	s.send(bob, `{"type":"flipCard"}`)
	s.expectEvent(alice, EventCardFlipped)
	s.expectEvent(bob, EventCardFlipped)
	detected := s.expectEvent(bob, EventFaceoffDetected)
	s.Equal(bobID, detected["flipperId"])
	s.expectEvent(alice, EventFaceoffDetected)

	// Alice loses; Bob scores
	s.send(alice, fmt.Sprintf(`{"type":"resolveFaceoff","loserId":%q}`, aliceID))
	resolved := s.expectEvent(alice, EventFaceoffResolved)
	s.Equal(aliceID, resolved["loserId"])
	s.Equal([]any{bobID}, resolved["winners"])
	s.expectEvent(bob, EventFaceoffResolved)

	// The two-card pile is spent and the face-off settled: game over,
	// Bob on top of the scoreboard
	ended := s.expectEvent(alice, EventGameEnded)
	winner := ended["winner"].(map[string]any)
	s.Equal(bobID, winner["playerId"])
	s.expectEvent(bob, EventGameEnded)
}
