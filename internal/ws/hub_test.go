package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, c *Client) []Event {
	t.Helper()
	var out []Event
	for {
		select {
		case data := <-c.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(data, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestRegisterJoinsDefaultRooms(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", 7, "rex", "MEMBER")
	h.Register(c)

	assert.Equal(t, 1, h.ClientCount())
	assert.True(t, h.IsUserConnected(7))
	assert.True(t, h.InRoom(c, PersonalRoom(7)))
	assert.True(t, h.InRoom(c, RoomGlobal))
	assert.False(t, h.InRoom(c, RoomWalking))
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	h := NewHub()
	a := NewClient("a", 1, "rex", "MEMBER")
	b := NewClient("b", 2, "luna", "MEMBER")
	h.Register(a)
	h.Register(b)

	h.Broadcast(RoomGlobal, "user:online", map[string]interface{}{"user_id": 1})

	for _, c := range []*Client{a, b} {
		evs := drain(t, c)
		require.Len(t, evs, 1)
		assert.Equal(t, "user:online", evs[0].Type)
	}
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	h := NewHub()
	a := NewClient("a", 1, "rex", "MEMBER")
	b := NewClient("b", 2, "luna", "MEMBER")
	h.Register(a)
	h.Register(b)

	h.BroadcastExcept(RoomGlobal, a, "user:location:update", nil)

	assert.Empty(t, drain(t, a))
	assert.Len(t, drain(t, b), 1)
}

func TestJoinLeaveChatRoom(t *testing.T) {
	h := NewHub()
	a := NewClient("a", 1, "rex", "MEMBER")
	b := NewClient("b", 2, "luna", "MEMBER")
	h.Register(a)
	h.Register(b)

	room := ChatRoom("park-east")
	h.Join(a, room)
	assert.True(t, h.InRoom(a, room))
	assert.Equal(t, 1, h.RoomSize(room))

	h.Broadcast(room, "chat:message:new", map[string]interface{}{"body": "woof"})
	assert.Len(t, drain(t, a), 1)
	assert.Empty(t, drain(t, b))

	h.Leave(a, room)
	assert.False(t, h.InRoom(a, room))
	assert.Zero(t, h.RoomSize(room))
}

func TestChatRoomNamespacing(t *testing.T) {
	assert.Equal(t, "chat:walkers", ChatRoom("walkers"))
	// a hostile room name cannot land in someone's personal room
	assert.NotEqual(t, PersonalRoom(3), ChatRoom(PersonalRoom(3)))
}

func TestPushToUserHitsEveryConnection(t *testing.T) {
	h := NewHub()
	phone := NewClient("phone", 5, "rex", "MEMBER")
	tablet := NewClient("tablet", 5, "rex", "MEMBER")
	other := NewClient("other", 6, "luna", "MEMBER")
	h.Register(phone)
	h.Register(tablet)
	h.Register(other)

	h.PushToUser(5, "notification:new", map[string]interface{}{"title": "hi"})

	assert.Len(t, drain(t, phone), 1)
	assert.Len(t, drain(t, tablet), 1)
	assert.Empty(t, drain(t, other))
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	h := NewHub()
	c := NewClient("a", 9, "rex", "MEMBER")
	h.Register(c)
	h.Join(c, RoomWalking)
	h.Join(c, ChatRoom("general"))

	c.Close()

	assert.Zero(t, h.ClientCount())
	assert.False(t, h.IsUserConnected(9))
	assert.Zero(t, h.RoomSize(RoomGlobal))
	assert.Zero(t, h.RoomSize(RoomWalking))
	assert.Zero(t, h.RoomSize(ChatRoom("general")))

	// sends after close are dropped, not panicking
	h.Broadcast(RoomGlobal, "noop", nil)
	c.trySend([]byte("late"))
}

type captureRelay struct {
	rooms []string
	data  [][]byte
}

func (r *captureRelay) Publish(room string, data []byte) {
	r.rooms = append(r.rooms, room)
	r.data = append(r.data, data)
}

func TestBroadcastForwardsToRelay(t *testing.T) {
	h := NewHub()
	relay := &captureRelay{}
	h.SetRelay(relay)
	c := NewClient("a", 1, "rex", "MEMBER")
	h.Register(c)

	h.Broadcast(RoomGlobal, "user:online", nil)
	require.Len(t, relay.rooms, 1)
	assert.Equal(t, RoomGlobal, relay.rooms[0])

	// frames arriving from the relay are delivered locally only
	h.DeliverLocal(RoomGlobal, relay.data[0], nil)
	assert.Len(t, drain(t, c), 2)
}

func TestSlowConsumerDropsFrames(t *testing.T) {
	h := NewHub()
	c := NewClient("a", 1, "rex", "MEMBER")
	c.Send = make(chan []byte, 1)
	h.Register(c)

	h.SendTo(c, "first", nil)
	h.SendTo(c, "second", nil) // buffer full, dropped

	evs := drain(t, c)
	require.Len(t, evs, 1)
	assert.Equal(t, "first", evs[0].Type)
}
