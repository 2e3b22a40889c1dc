package chathub_test

import (
	"encoding/json"
	"testing"
	"time"

	"chatwave/backend/internal/chathub"
	"chatwave/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func callerInfo() *models.UserInfo {
	return &models.UserInfo{ID: "alice", Username: "alice99", FullName: "Alice A", ProfileURL: "http://img/alice"}
}

func boolPtr(b bool) *bool { return &b }

func TestInitiate_RingsOnlineReceiver(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	bob := newMockClient("bob")
	hub.Presence.SetOnline("alice", alice)
	hub.Presence.SetOnline("bob", bob)

	store.On("HasActiveCallFrom", "alice").Return(false, nil)
	store.On("DisplayInfoByID", "alice").Return(callerInfo(), nil)
	store.On("CreateCall", mock.AnythingOfType("*models.Call")).Return(nil)

	hub.Calls.Initiate(alice, models.CallInitiatePayload{
		CallID: "c1", CallerID: "alice", ReceiverID: "bob", CallType: "video",
	})

	got := eventsOfType(bob.received(), models.EvIncomingCall)
	assert.Len(t, got, 1)
	incoming := got[0].Data.(models.IncomingCallEvent)
	assert.Equal(t, "c1", incoming.CallID)
	assert.Equal(t, "alice99", incoming.CallerName)
	assert.Equal(t, "video", incoming.CallType)

	assert.Empty(t, eventsOfType(alice.received(), models.EvCallFailed))
	store.AssertNotCalled(t, "DeleteCall", mock.Anything)
}

func TestInitiate_GeneratesCallIDWhenMissing(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	bob := newMockClient("bob")
	hub.Presence.SetOnline("alice", alice)
	hub.Presence.SetOnline("bob", bob)

	store.On("HasActiveCallFrom", "alice").Return(false, nil)
	store.On("DisplayInfoByID", "alice").Return(callerInfo(), nil)
	store.On("CreateCall", mock.AnythingOfType("*models.Call")).Return(nil)

	hub.Calls.Initiate(alice, models.CallInitiatePayload{
		CallerID: "alice", ReceiverID: "bob", CallType: "audio",
	})

	got := eventsOfType(bob.received(), models.EvIncomingCall)
	assert.Len(t, got, 1)
	assert.NotEmpty(t, got[0].Data.(models.IncomingCallEvent).CallID)
}

func TestInitiate_CallerAlreadyBusy(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	hub.Presence.SetOnline("alice", alice)

	store.On("HasActiveCallFrom", "alice").Return(true, nil)

	hub.Calls.Initiate(alice, models.CallInitiatePayload{
		CallID: "c1", CallerID: "alice", ReceiverID: "bob", CallType: "audio",
	})

	got := eventsOfType(alice.received(), models.EvCallFailed)
	assert.Len(t, got, 1)
	assert.Equal(t, "You are already in a call", got[0].Data.(models.CallFailedEvent).Reason)

	store.AssertNotCalled(t, "CreateCall", mock.Anything)
}

func TestInitiate_ReceiverOffline(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	hub.Presence.SetOnline("alice", alice)

	store.On("HasActiveCallFrom", "alice").Return(false, nil)
	store.On("DisplayInfoByID", "alice").Return(callerInfo(), nil)
	store.On("CreateCall", mock.AnythingOfType("*models.Call")).Return(nil)
	store.On("DeleteCall", "c1").Return(nil)

	hub.Calls.Initiate(alice, models.CallInitiatePayload{
		CallID: "c1", CallerID: "alice", ReceiverID: "bob", CallType: "video",
	})

	got := eventsOfType(alice.received(), models.EvCallFailed)
	assert.Len(t, got, 1)
	assert.Equal(t, "User is offline", got[0].Data.(models.CallFailedEvent).Reason)

	store.AssertCalled(t, "DeleteCall", "c1")
}

func TestAccept_StampsStartTime(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	hub.Presence.SetOnline("alice", alice)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallRinging}
	store.On("FindCallByID", "c1").Return(call, nil)
	var saved *models.Call
	store.On("SaveCall", mock.AnythingOfType("*models.Call")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*models.Call)
	}).Return(nil)

	hub.Calls.Accept(models.CallAcceptPayload{CallID: "c1", ReceiverID: "bob"})

	assert.NotNil(t, saved)
	assert.Equal(t, models.CallActive, saved.Status)
	assert.NotNil(t, saved.StartTime)
	assert.Nil(t, saved.EndTime)

	got := eventsOfType(alice.received(), models.EvCallAccepted)
	assert.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].Data.(models.CallAcceptedEvent).CallID)
}

func TestAccept_IgnoresNonRingingCall(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	hub.Presence.SetOnline("alice", alice)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallEnded}
	store.On("FindCallByID", "c1").Return(call, nil)

	hub.Calls.Accept(models.CallAcceptPayload{CallID: "c1", ReceiverID: "bob"})

	assert.Empty(t, alice.received())
	store.AssertNotCalled(t, "SaveCall", mock.Anything)
}

func TestReject_DefaultReason(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	hub.Presence.SetOnline("alice", alice)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallRinging}
	store.On("FindCallByID", "c1").Return(call, nil)
	var saved *models.Call
	store.On("SaveCall", mock.AnythingOfType("*models.Call")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*models.Call)
	}).Return(nil)

	hub.Calls.Reject(models.CallRejectPayload{CallID: "c1", ReceiverID: "bob"})

	got := eventsOfType(alice.received(), models.EvCallRejected)
	assert.Len(t, got, 1)
	assert.Equal(t, "declined", got[0].Data.(models.CallRejectedEvent).Reason)

	assert.NotNil(t, saved)
	assert.Equal(t, models.CallRejected, saved.Status)
	assert.NotNil(t, saved.EndTime)
	assert.Nil(t, saved.StartTime)
}

func TestMissed_NotifiesBothParties(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	bob := newMockClient("bob")
	hub.Presence.SetOnline("alice", alice)
	hub.Presence.SetOnline("bob", bob)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallRinging}
	store.On("FindCallByID", "c1").Return(call, nil)
	store.On("SaveCall", mock.AnythingOfType("*models.Call")).Return(nil)

	hub.Calls.Missed(models.CallMissedPayload{CallID: "c1"})

	for _, c := range []*MockClient{alice, bob} {
		got := eventsOfType(c.received(), models.EvCallEnded)
		assert.Len(t, got, 1)
		assert.Equal(t, "missed", got[0].Data.(models.CallEndedEvent).Reason)
	}
}

func TestMissed_IgnoresActiveCall(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	alice := newMockClient("alice")
	bob := newMockClient("bob")
	hub.Presence.SetOnline("alice", alice)
	hub.Presence.SetOnline("bob", bob)

	start := time.Now()
	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallActive, StartTime: &start}
	store.On("FindCallByID", "c1").Return(call, nil)

	hub.Calls.Missed(models.CallMissedPayload{CallID: "c1"})

	assert.Equal(t, models.CallActive, call.Status, "an answered call only ends through End")
	assert.Empty(t, alice.received())
	assert.Empty(t, bob.received())
	store.AssertNotCalled(t, "SaveCall", mock.Anything)
}

func TestEnd_ActiveCall(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	bob := newMockClient("bob")
	hub.Presence.SetOnline("bob", bob)

	start := time.Now().Add(-time.Minute)
	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallActive, StartTime: &start}
	store.On("FindCallByID", "c1").Return(call, nil)
	var saved *models.Call
	store.On("SaveCall", mock.AnythingOfType("*models.Call")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*models.Call)
	}).Return(nil)

	hub.Calls.End(models.CallEndPayload{CallID: "c1", UserID: "alice"})

	got := eventsOfType(bob.received(), models.EvCallEnded)
	assert.Len(t, got, 1)

	assert.NotNil(t, saved)
	assert.Equal(t, models.CallEnded, saved.Status)
	assert.NotNil(t, saved.EndTime)
	assert.True(t, saved.EndTime.After(*saved.StartTime))
}

func TestEnd_RingingCallRecordsZeroDuration(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	bob := newMockClient("bob")
	hub.Presence.SetOnline("bob", bob)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallRinging}
	store.On("FindCallByID", "c1").Return(call, nil)
	var saved *models.Call
	store.On("SaveCall", mock.AnythingOfType("*models.Call")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*models.Call)
	}).Return(nil)

	hub.Calls.End(models.CallEndPayload{CallID: "c1", UserID: "alice"})

	assert.NotNil(t, saved)
	assert.Equal(t, models.CallEnded, saved.Status)
	assert.NotNil(t, saved.StartTime)
	assert.Equal(t, saved.StartTime, saved.EndTime)
}

func TestEnd_TerminalCallIsNoOp(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	bob := newMockClient("bob")
	hub.Presence.SetOnline("bob", bob)

	call := &models.Call{CallID: "c1", CallerID: "alice", ReceiverID: "bob", Status: models.CallRejected}
	store.On("FindCallByID", "c1").Return(call, nil)

	hub.Calls.End(models.CallEndPayload{CallID: "c1", UserID: "alice"})

	assert.Empty(t, bob.received())
	store.AssertNotCalled(t, "SaveCall", mock.Anything)
}

func TestEnd_UnknownCallIsNoOp(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	store.On("FindCallByID", "nope").Return(nil, nil)

	hub.Calls.End(models.CallEndPayload{CallID: "nope", UserID: "alice"})

	store.AssertNotCalled(t, "SaveCall", mock.Anything)
}

func TestToggleMedia_RelaysToTarget(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	bob := newMockClient("bob")
	hub.Presence.SetOnline("bob", bob)

	hub.Calls.ToggleMedia(models.CallToggleMediaPayload{
		CallID: "c1", UserID: "alice", TargetID: "bob", MediaType: "video", Enabled: boolPtr(false),
	})

	got := eventsOfType(bob.received(), models.EvCallMediaToggled)
	assert.Len(t, got, 1)
	toggled := got[0].Data.(models.CallMediaToggledEvent)
	assert.Equal(t, "video", toggled.MediaType)
	assert.False(t, toggled.Enabled)
	assert.Equal(t, "alice", toggled.UserID)
}

func TestRelay_ForwardsPayloadUntouched(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	bob := newMockClient("bob")
	hub.Presence.SetOnline("bob", bob)

	payload := json.RawMessage(`{"targetId":"bob","sdp":"v=0 ..."}`)
	hub.Calls.Relay(models.EvWebRTCOffer, "bob", payload)

	got := eventsOfType(bob.received(), models.EvWebRTCOffer)
	assert.Len(t, got, 1)
	assert.Equal(t, payload, got[0].Data.(json.RawMessage))
}

func TestRelay_OfflineTargetDropsPayload(t *testing.T) {
	store := new(MockStorage)
	hub := chathub.NewHub(store, chathub.DefaultTypingTimeout)

	hub.Calls.Relay(models.EvWebRTCAnswer, "ghost", json.RawMessage(`{"targetId":"ghost"}`))
	// nothing to assert beyond not panicking; no connection, no delivery
}
