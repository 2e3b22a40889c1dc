package chathub

import (
	"encoding/json"
	"log"
	"time"

	"chatwave/backend/internal/models"
	"chatwave/backend/internal/storage"

	"github.com/google/uuid"
)

// CallService owns the call lifecycle state machine
// (ringing -> active -> ended, with rejected/missed as alternative
// terminals) and relays the WebRTC handshake between the two parties.
// Store failures are logged and swallowed; only Initiate reports a
// failure back to the client.
type CallService struct {
	store storage.Storage
	bc    Broadcaster
}

func NewCallService(store storage.Storage, bc Broadcaster) *CallService {
	return &CallService{store: store, bc: bc}
}

// Initiate starts a call. The busy check inspects only the caller's
// active calls; a receiver already on a call still gets the
// incoming_call event. That asymmetry is deliberate, it matches the
// shipped client's expectations.
func (s *CallService) Initiate(c Client, p models.CallInitiatePayload) {
	busy, err := s.store.HasActiveCallFrom(p.CallerID)
	if err != nil {
		log.Printf("ERROR: busy check failed for %s: %v", p.CallerID, err)
		s.bc.ToClient(c, failed(p.CallID, "server error"))
		return
	}
	if busy {
		s.bc.ToClient(c, failed(p.CallID, "You are already in a call"))
		return
	}

	info, err := s.store.DisplayInfoByID(p.CallerID)
	if err != nil {
		log.Printf("ERROR: caller lookup failed for %s: %v", p.CallerID, err)
		s.bc.ToClient(c, failed(p.CallID, "server error"))
		return
	}

	callID := p.CallID
	if callID == "" {
		callID = uuid.New().String()
	}

	call := &models.Call{
		CallID:           callID,
		CallerID:         p.CallerID,
		ReceiverID:       p.ReceiverID,
		CallerName:       info.Username,
		CallerFullName:   info.FullName,
		CallerProfileURL: info.ProfileURL,
		CallType:         p.CallType,
		Status:           models.CallRinging,
	}
	if err := s.store.CreateCall(call); err != nil {
		log.Printf("ERROR: failed to save call %s: %v", callID, err)
		s.bc.ToClient(c, failed(callID, "server error"))
		return
	}

	delivered := s.bc.ToUser(p.ReceiverID, models.ServerEvent{
		Type: models.EvIncomingCall,
		Data: models.IncomingCallEvent{
			CallID:           callID,
			CallerID:         p.CallerID,
			CallerName:       info.Username,
			CallerFullName:   info.FullName,
			CallerProfileURL: info.ProfileURL,
			CallType:         p.CallType,
		},
	})
	if !delivered {
		s.bc.ToClient(c, failed(callID, "User is offline"))
		// no ringing record may outlive an offline receiver
		if err := s.store.DeleteCall(callID); err != nil {
			log.Printf("ERROR: failed to delete call %s: %v", callID, err)
		}
	}
}

// Accept transitions ringing -> active and tells the caller.
func (s *CallService) Accept(p models.CallAcceptPayload) {
	call := s.load(p.CallID)
	if call == nil || call.Status != models.CallRinging {
		return
	}

	now := time.Now()
	call.Status = models.CallActive
	call.StartTime = &now
	if err := s.store.SaveCall(call); err != nil {
		log.Printf("ERROR: failed to save call %s: %v", call.CallID, err)
		return
	}

	s.bc.ToUser(call.CallerID, models.ServerEvent{
		Type: models.EvCallAccepted,
		Data: models.CallAcceptedEvent{CallID: call.CallID},
	})
}

// Reject transitions ringing -> rejected and tells the caller why.
func (s *CallService) Reject(p models.CallRejectPayload) {
	call := s.load(p.CallID)
	if call == nil || call.Status != models.CallRinging {
		return
	}

	reason := p.Reason
	if reason == "" {
		reason = "declined"
	}
	s.bc.ToUser(call.CallerID, models.ServerEvent{
		Type: models.EvCallRejected,
		Data: models.CallRejectedEvent{CallID: call.CallID, Reason: reason},
	})

	now := time.Now()
	call.Status = models.CallRejected
	call.EndTime = &now
	if err := s.store.SaveCall(call); err != nil {
		log.Printf("ERROR: failed to save call %s: %v", call.CallID, err)
	}
}

// Missed transitions ringing -> missed and tells whoever is online the
// call is over. A call that was answered can only end through End; a
// stray miss signal against it is a no-op.
func (s *CallService) Missed(p models.CallMissedPayload) {
	call := s.load(p.CallID)
	if call == nil || call.Status != models.CallRinging {
		return
	}

	now := time.Now()
	call.Status = models.CallMissed
	call.EndTime = &now
	if err := s.store.SaveCall(call); err != nil {
		log.Printf("ERROR: failed to save call %s: %v", call.CallID, err)
		return
	}

	ev := models.ServerEvent{
		Type: models.EvCallEnded,
		Data: models.CallEndedEvent{CallID: call.CallID, Reason: "missed"},
	}
	s.bc.ToUser(call.CallerID, ev)
	s.bc.ToUser(call.ReceiverID, ev)
}

// End transitions to ended, notifying the other party. A call that was
// still ringing records zero duration: start and end are stamped with
// the same instant.
func (s *CallService) End(p models.CallEndPayload) {
	call := s.load(p.CallID)
	if call == nil || call.Status.Terminal() {
		return
	}

	if other := call.OtherParty(p.UserID); other != "" {
		s.bc.ToUser(other, models.ServerEvent{
			Type: models.EvCallEnded,
			Data: models.CallEndedEvent{CallID: call.CallID},
		})
	}

	now := time.Now()
	if call.Status == models.CallRinging {
		if call.StartTime == nil {
			call.StartTime = &now
		}
		call.EndTime = call.StartTime
	} else {
		call.EndTime = &now
	}
	call.Status = models.CallEnded
	if err := s.store.SaveCall(call); err != nil {
		log.Printf("ERROR: failed to save call %s: %v", call.CallID, err)
	}
}

// ToggleMedia relays an audio/video enable change to the other party.
// Call status is untouched.
func (s *CallService) ToggleMedia(p models.CallToggleMediaPayload) {
	s.bc.ToUser(p.TargetID, models.ServerEvent{
		Type: models.EvCallMediaToggled,
		Data: models.CallMediaToggledEvent{
			CallID:    p.CallID,
			UserID:    p.UserID,
			MediaType: p.MediaType,
			Enabled:   *p.Enabled,
		},
	})
}

// Relay forwards a WebRTC handshake payload to the target untouched.
// An offline target drops the payload; there is no queue and no retry.
func (s *CallService) Relay(eventType, targetID string, payload json.RawMessage) {
	s.bc.ToUser(targetID, models.ServerEvent{Type: eventType, Data: payload})
}

// load fetches a call by id, logging the miss; every operation on an
// unknown call is a silent no-op for the client.
func (s *CallService) load(callID string) *models.Call {
	call, err := s.store.FindCallByID(callID)
	if err != nil {
		log.Printf("ERROR: failed to load call %s: %v", callID, err)
		return nil
	}
	if call == nil {
		log.Printf("call %s not found", callID)
		return nil
	}
	return call
}

func failed(callID, reason string) models.ServerEvent {
	return models.ServerEvent{
		Type: models.EvCallFailed,
		Data: models.CallFailedEvent{CallID: callID, Reason: reason},
	}
}
