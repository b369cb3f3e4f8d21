package service

import "testing"

func TestNewPublisherURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "amqp://camper:pw@mq:5672/")
	if p := NewPublisher(""); p.URL != "amqp://camper:pw@mq:5672/" {
		t.Fatalf("fallback URL = %q", p.URL)
	}
	if p := NewPublisher("amqp://other/"); p.URL != "amqp://other/" {
		t.Fatalf("explicit URL = %q", p.URL)
	}
}
