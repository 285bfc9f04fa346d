package connector

import (
	"testing"
	"time"

	"github.com/adamwoolhether/apiconn/internal/layered"
)

func TestResolve(t *testing.T) {
	session := Settings{ConnectTimeout: layered.Ptr(5 * time.Second), EnableCaching: layered.Ptr(false)}
	callSite := Settings{ConnectTimeout: layered.Ptr(time.Second)}

	s := Resolve(callSite, session)

	if *s.ConnectTimeout != time.Second {
		t.Errorf("expected call-site timeout, got %v", *s.ConnectTimeout)
	}
	if *s.EnableCaching {
		t.Error("expected session caching setting")
	}
	if !*s.FollowRedirects {
		t.Error("expected default redirect setting")
	}
	if *s.ReadTimeout != 0 {
		t.Errorf("expected default read timeout, got %v", *s.ReadTimeout)
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("APICONN_CONNECT_TIMEOUT", "2s")
	t.Setenv("APICONN_FOLLOW_REDIRECTS", "false")

	s, err := SettingsFromEnv("apiconn")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if s.ConnectTimeout == nil || *s.ConnectTimeout != 2*time.Second {
		t.Errorf("expected 2s connect timeout, got %v", s.ConnectTimeout)
	}
	if s.FollowRedirects == nil || *s.FollowRedirects {
		t.Errorf("expected follow redirects false, got %v", s.FollowRedirects)
	}
	if s.ReadTimeout != nil || s.EnableCaching != nil {
		t.Error("expected unset variables to stay absent")
	}
}

func TestSettingsFromEnv_Invalid(t *testing.T) {
	t.Setenv("APICONN_READ_TIMEOUT", "-1s")

	if _, err := SettingsFromEnv("apiconn"); err == nil {
		t.Error("expected validation error for negative timeout")
	}
}
