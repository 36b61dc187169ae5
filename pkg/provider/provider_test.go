package provider

import (
	"testing"

	"edutune/pkg/config"
	provideropenai "edutune/pkg/provider/openai"
	"edutune/pkg/provider/spotify"
)

func TestNewServicesBuildsEveryAdapter(t *testing.T) {
	svc := NewServices(config.Default())

	if svc.Answers == nil || svc.Memes == nil || svc.Jokes == nil || svc.Quotes == nil || svc.Music == nil {
		t.Fatalf("services = %+v, want every adapter set", svc)
	}
	if svc.Links == nil || svc.Images == nil {
		t.Fatal("expected link and image sources")
	}
	if _, ok := svc.Answers.(*provideropenai.Client); !ok {
		t.Fatalf("expected *openai.Client, got %T", svc.Answers)
	}
}

func TestNewServicesReflectsCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Services.OpenAI.APIKey = "sk-test"
	cfg.Services.Spotify.ClientID = "id"
	cfg.Services.Spotify.ClientSecret = "secret"

	svc := NewServices(cfg)

	if !svc.Answers.Configured() {
		t.Fatal("expected answer service to be configured")
	}
	music, ok := svc.Music.(*spotify.Client)
	if !ok {
		t.Fatalf("expected *spotify.Client, got %T", svc.Music)
	}
	if !music.Configured() {
		t.Fatal("expected spotify to be configured")
	}
}

func TestNewServicesNilConfig(t *testing.T) {
	svc := NewServices(nil)
	if svc.Answers.Configured() {
		t.Fatal("expected default answer service to be unconfigured")
	}
}
