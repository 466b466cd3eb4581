package sdk

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Persisted keys. An upgrade must tolerate the absence of any of them.
const (
	keyGuestID     = "guest_id"
	keyAuthToken   = "auth_token"
	keyUserProfile = "user_profile"
)

// IdentityStore persists and restores the guest id, auth token and profile blob.
// It holds no policy; SessionController decides when to call it.
type IdentityStore struct {
	storage Storage
}

// NewIdentityStore wraps storage.
func NewIdentityStore(storage Storage) *IdentityStore {
	return &IdentityStore{storage: storage}
}

// GuestID returns the device guest id, creating and persisting one on first use.
// The returned id is usable even when persisting it failed.
func (s *IdentityStore) GuestID() (GuestID, error) {
	if id, ok := s.storage.Get(keyGuestID); ok && id != "" {
		return GuestID(id), nil
	}

	id := GuestID("guest_" + uuid.NewString())
	if err := s.storage.Set(keyGuestID, string(id)); err != nil {
		return id, fmt.Errorf("persist guest id: %w", err)
	}
	return id, nil
}

// Token returns the persisted auth token, if any.
func (s *IdentityStore) Token() (AuthToken, bool) {
	tok, ok := s.storage.Get(keyAuthToken)
	if !ok || tok == "" {
		return "", false
	}
	return AuthToken(tok), true
}

// Profile returns the persisted profile blob. A corrupt blob reads as absent.
func (s *IdentityStore) Profile() (*MemberProfile, bool) {
	raw, ok := s.storage.Get(keyUserProfile)
	if !ok || raw == "" {
		return nil, false
	}
	var profile MemberProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

// SaveSession persists a token together with its profile. Either both keys are
// written or both are restored to what they held before.
func (s *IdentityStore) SaveSession(token AuthToken, profile MemberProfile) error {
	if token == "" {
		return errors.New("refusing to persist empty token")
	}
	blob, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	prevProfile, hadProfile := s.storage.Get(keyUserProfile)
	prevToken, hadToken := s.storage.Get(keyAuthToken)

	if err := s.storage.Set(keyUserProfile, string(blob)); err != nil {
		s.restore(keyUserProfile, prevProfile, hadProfile)
		return fmt.Errorf("persist profile: %w", err)
	}
	if err := s.storage.Set(keyAuthToken, string(token)); err != nil {
		s.restore(keyAuthToken, prevToken, hadToken)
		s.restore(keyUserProfile, prevProfile, hadProfile)
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// SaveProfile replaces the profile blob only.
func (s *IdentityStore) SaveProfile(profile MemberProfile) error {
	blob, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.storage.Set(keyUserProfile, string(blob))
}

// ClearSession removes the token and profile. The guest id survives.
func (s *IdentityStore) ClearSession() error {
	return errors.Join(
		s.storage.Remove(keyAuthToken),
		s.storage.Remove(keyUserProfile),
	)
}

func (s *IdentityStore) restore(key, prev string, had bool) {
	if had {
		_ = s.storage.Set(key, prev)
		return
	}
	_ = s.storage.Remove(key)
}
