package bot

import (
	"fmt"
	"strings"

	"topicrelay/pkg/models"
)

// startPayload is the deep-link argument of /start, e.g. "p-manual_s-google".
type startPayload struct {
	Source  string
	Product string
}

func parseStartPayload(payload string) startPayload {
	var p startPayload
	for _, pair := range strings.Split(strings.TrimSpace(payload), "_") {
		key, value, ok := strings.Cut(pair, "-")
		if !ok || value == "" {
			continue
		}
		switch key {
		case "s":
			p.Source = value
		case "p":
			p.Product = value
		}
	}
	return p
}

// startAnnouncement mentions the user by @username, or by display name when
// they have none.
func startAnnouncement(u *models.User, p startPayload) string {
	who := u.DisplayName()
	if u.Username != "" {
		who = "@" + u.Username
	}
	return fmt.Sprintf("%s started the bot\nSource: #%s\nProduct: #%s", who, p.Source, p.Product)
}
