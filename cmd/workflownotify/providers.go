package main

// Provider blank imports. Each import activates a self-registering adapter.
// Add new providers here as they are implemented.

import (
	_ "github.com/Strob0t/workflow-notify/internal/adapter/discord"
	_ "github.com/Strob0t/workflow-notify/internal/adapter/github"
	_ "github.com/Strob0t/workflow-notify/internal/adapter/nats"
	_ "github.com/Strob0t/workflow-notify/internal/adapter/slack"
)
