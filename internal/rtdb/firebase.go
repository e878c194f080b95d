// ===============================
// internal/rtdb/firebase.go - Firebase Realtime Database Store
// ===============================

package rtdb

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore talks to a hosted Realtime Database through the Admin SDK
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) Get(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Get(ctx, v); err != nil {
		return fmt.Errorf("rtdb get %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Set(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("rtdb set %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	if err := s.client.NewRef(path).Update(ctx, values); err != nil {
		return fmt.Errorf("rtdb update %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Delete(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("rtdb delete %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("rtdb push %s: %w", path, err)
	}
	return ref.Key, nil
}

func (s *FirebaseStore) Transaction(ctx context.Context, path string, fn UpdateFn) error {
	err := s.client.NewRef(path).Transaction(ctx, func(tn db.TransactionNode) (interface{}, error) {
		return fn(tn)
	})
	if err != nil {
		return fmt.Errorf("rtdb transaction %s: %w", path, err)
	}
	return nil
}
