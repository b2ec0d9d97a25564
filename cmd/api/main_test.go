package main

import (
	"context"
	"testing"

	"github.com/salonsuite/platform/cmd/mainconfig"
	appconfig "github.com/salonsuite/platform/internal/config"
	"github.com/salonsuite/platform/internal/notify"
	"github.com/salonsuite/platform/pkg/logging"
)

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{EmailProvider: "auto"}
	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), &appconfig.Config{AWSRegion: "us-east-1"})
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}

	sender := buildEmailSender(cfg, awsCfg, logger)
	if _, ok := sender.(*notify.StubEmailSender); !ok {
		t.Fatalf("expected stub sender with no provider configured, got %T", sender)
	}
}

func TestBuildEmailSenderSendGridOnly(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		EmailProvider:     "sendgrid",
		SendGridAPIKey:    "SG.test",
		SendGridFromEmail: "noreply@example.com",
	}
	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), &appconfig.Config{AWSRegion: "us-east-1"})
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}

	sender := buildEmailSender(cfg, awsCfg, logger)
	if _, ok := sender.(*notify.SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", sender)
	}
}

func TestSalonNamePrefersSES(t *testing.T) {
	cfg := &appconfig.Config{SESFromName: "Lumen Salon", SendGridFromName: "Other"}
	if got := salonName(cfg); got != "Lumen Salon" {
		t.Errorf("salonName = %q", got)
	}
	cfg = &appconfig.Config{SendGridFromName: "Other"}
	if got := salonName(cfg); got != "Other" {
		t.Errorf("salonName = %q", got)
	}
}
