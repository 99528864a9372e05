package tempo

import (
	"context"
	"errors"
	"testing"
)

func TestArtistAdapter_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		artist  string
		wantBPM int
		wantErr bool
	}{
		{name: "exact match", artist: "Taylor Swift", wantBPM: 130},
		{name: "case insensitive", artist: "TAYLOR SWIFT", wantBPM: 130},
		{name: "substring match", artist: "Taylor Swift feat. Ed Sheeran", wantBPM: 130},
		{name: "another entry", artist: "Daft Punk", wantBPM: 123},
		{name: "unknown artist", artist: "Obscure Garage Band", wantErr: true},
		{name: "empty artist", artist: "", wantErr: true},
	}

	adapter := NewArtistAdapter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := adapter.Resolve(context.Background(), "Song", tt.artist)

			if tt.wantErr {
				if !errors.Is(err, ErrUnresolved) {
					t.Fatalf("Resolve() error = %v, want ErrUnresolved", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if est.BPM != tt.wantBPM {
				t.Errorf("Resolve() BPM = %d, want %d", est.BPM, tt.wantBPM)
			}
			if est.Source != SourceArtistHeuristic {
				t.Errorf("Resolve() source = %s, want %s", est.Source, SourceArtistHeuristic)
			}
		})
	}
}

func TestDefaultAdapter_AlwaysSucceeds(t *testing.T) {
	adapter := NewDefaultAdapter()

	est, err := adapter.Resolve(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if est.BPM != DefaultBPM {
		t.Errorf("Resolve() BPM = %d, want %d", est.BPM, DefaultBPM)
	}
	if est.Source != SourceDefault {
		t.Errorf("Resolve() source = %s, want %s", est.Source, SourceDefault)
	}
}
