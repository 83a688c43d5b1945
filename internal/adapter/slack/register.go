package slack

import "github.com/Strob0t/workflow-notify/internal/port/notifier"

func init() {
	notifier.Register(webhookProviderName, func(config map[string]string) (notifier.Notifier, error) {
		if config["webhook_url"] == "" {
			return nil, notifier.ErrNotConfigured
		}
		return NewNotifier(config["webhook_url"]), nil
	})

	notifier.Register(botProviderName, func(config map[string]string) (notifier.Notifier, error) {
		n := NewBotNotifier(config["api_url"], config["token"], config["channel"])
		if n.token == "" {
			return nil, notifier.ErrNotConfigured
		}
		if n.channel == "" {
			return nil, ErrChannelRequired
		}
		return n, nil
	})
}
