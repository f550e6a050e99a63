package amqp

import (
	"context"
	"errors"
	"testing"
)

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestSettle(t *testing.T) {
	valid, err := NewTransactionRecordedMessage("s1", 1, "Lunch", "Food", 10).ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name        string
		body        []byte
		handlerErr  error
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{name: "handled", body: valid, wantAck: true},
		{name: "handler failure requeues", body: valid, handlerErr: errors.New("sheets down"), wantNack: true, wantRequeue: true},
		{name: "garbage is dropped", body: []byte("{not json"), wantNack: true},
		{name: "missing seq is dropped", body: []byte(`{"session":"s1"}`), wantNack: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			called := false
			settle(context.Background(), ack, tt.body, func(_ context.Context, msg *TransactionRecordedMessage) error {
				called = true
				if msg.Session != "s1" || msg.Seq != 1 {
					t.Errorf("unexpected message: %+v", msg)
				}
				return tt.handlerErr
			})
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeued != tt.wantRequeue {
				t.Errorf("ack=%v nack=%v requeue=%v", ack.acked, ack.nacked, ack.requeued)
			}
			if !tt.wantNack || tt.wantRequeue {
				if !called {
					t.Error("handler should have been called")
				}
			}
		})
	}
}

func TestTransactionRecordedMessageFromJSON(t *testing.T) {
	msg := NewTransactionRecordedMessage("s1", 2, "Bus", "Transport", 5)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := TransactionRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != "Bus" || got.Category != "Transport" || got.Amount != 5 || !got.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("unexpected message: %+v", got)
	}
}
