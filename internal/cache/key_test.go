package cache

import (
	"errors"
	"testing"
)

func baseRequest() Request {
	return Request{
		Text:   "Hello world",
		Voice:  "en-US-natalie",
		Format: FormatMP3,
		Speed:  1.0,
		Pitch:  0.0,
	}
}

func TestRequestKey_Deterministic(t *testing.T) {
	req := baseRequest()

	k1 := req.Key()
	k2 := req.Key()
	if k1 != k2 {
		t.Errorf("identical requests produced different keys: %s vs %s", k1, k2)
	}

	// Same field values through a separate value.
	other := baseRequest()
	if other.Key() != k1 {
		t.Errorf("equal-valued request produced a different key")
	}

	if len(k1) != 32 { // 16 bytes hex encoded
		t.Errorf("key length incorrect: got %d, want 32", len(k1))
	}
}

func TestRequestKey_FieldSensitivity(t *testing.T) {
	base := baseRequest()
	baseKey := base.Key()

	mutations := map[string]Request{}

	r := base
	r.Text = "Hello worlds"
	mutations["text"] = r

	r = base
	r.Voice = "en-US-terrell"
	mutations["voice"] = r

	r = base
	r.Format = FormatWAV
	mutations["format"] = r

	r = base
	r.Speed = 1.5
	mutations["speed"] = r

	r = base
	r.Pitch = 2.0
	mutations["pitch"] = r

	for field, req := range mutations {
		if req.Key() == baseKey {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}

func TestRequestKey_FixedPrecision(t *testing.T) {
	a := baseRequest()
	a.Speed = 1.1

	// A representation artifact beyond three decimal places must not
	// change the fingerprint.
	b := baseRequest()
	b.Speed = 1.1000000001

	if a.Key() != b.Key() {
		t.Error("sub-precision float difference produced a spurious key change")
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"valid", func(*Request) {}, nil},
		{"empty text", func(r *Request) { r.Text = "  " }, ErrEmptyText},
		{"empty voice", func(r *Request) { r.Voice = "" }, ErrEmptyVoice},
		{"bad format", func(r *Request) { r.Format = "ogg" }, ErrInvalidFormat},
		{"speed too low", func(r *Request) { r.Speed = 0.1 }, ErrSpeedRange},
		{"speed too high", func(r *Request) { r.Speed = 2.5 }, ErrSpeedRange},
		{"pitch too low", func(r *Request) { r.Pitch = -30 }, ErrPitchRange},
		{"pitch too high", func(r *Request) { r.Pitch = 30 }, ErrPitchRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
