package mongoerr

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDupField(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "code", Value: 11000},
		{Key: "keyValue", Value: bson.D{{Key: "email", Value: "a@b.co"}}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name      string
		err       error
		wantField string
		wantOK    bool
	}{
		{
			name:   "nil error",
			err:    nil,
			wantOK: false,
		},
		{
			name:   "generic error",
			err:    errors.New("some random error"),
			wantOK: false,
		},
		{
			name: "write exception with keyValue",
			err: mongo.WriteException{WriteErrors: []mongo.WriteError{
				{Code: 11000, Message: "E11000 duplicate key error", Raw: bson.Raw(raw)},
			}},
			wantField: "email",
			wantOK:    true,
		},
		{
			name: "write exception message only",
			err: mongo.WriteException{WriteErrors: []mongo.WriteError{
				{Code: 11000, Message: `E11000 duplicate key error collection: panel.users index: email_1 dup key: { email: "a@b.co" }`},
			}},
			wantField: "email",
			wantOK:    true,
		},
		{
			name: "bulk write exception",
			err: mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
				{WriteError: mongo.WriteError{Code: 11000, Message: `E11000 duplicate key error index: phone_1 dup key: { phone: "555" }`}},
			}},
			wantField: "phone",
			wantOK:    true,
		},
		{
			name:      "plain duplicate text",
			err:       errors.New("duplicate key somewhere"),
			wantField: "value",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := DupField(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if field != tt.wantField {
				t.Errorf("field = %q, want %q", field, tt.wantField)
			}
		})
	}
}
