package log

import "testing"

func TestIsEnabledForTracksLevel(t *testing.T) {
	defer SetLevel(Notice)

	l := New("leveltest")

	SetLevel(Notice)
	if l.IsEnabledFor(Debug) {
		t.Fatal("expected debug records to be filtered at notice verbosity")
	}
	if !l.IsEnabledFor(Error) {
		t.Fatal("expected error records to pass at notice verbosity")
	}

	SetLevel(Debug)
	if !l.IsEnabledFor(Debug) {
		t.Fatal("expected debug records to pass at debug verbosity")
	}
}
