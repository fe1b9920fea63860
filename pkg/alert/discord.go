package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier posts alerts to a channel webhook. It holds a tokenless
// session; webhook execution authenticates with the webhook token itself.
type DiscordNotifier struct {
	session *discordgo.Session
	id      string
	token   string
}

// NewDiscordNotifier parses a channel webhook URL of the usual
// https://discord.com/api/webhooks/<id>/<token> shape.
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	parts := strings.Split(strings.TrimRight(webhookURL, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed discord webhook url")
	}
	id, token := parts[len(parts)-2], parts[len(parts)-1]
	if id == "" || token == "" {
		return nil, fmt.Errorf("malformed discord webhook url")
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{session: session, id: id, token: token}, nil
}

func (n *DiscordNotifier) Notify(ctx context.Context, alert Alert) error {
	_, err := n.session.WebhookExecute(n.id, n.token, false, &discordgo.WebhookParams{
		Content: alert.String(),
	}, discordgo.WithContext(ctx))
	return err
}
