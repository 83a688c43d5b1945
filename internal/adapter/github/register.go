package github

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
)

func init() {
	ciprovider.Register(providerName, func(config map[string]string) (ciprovider.Provider, error) {
		var opts []Option
		if v := config["timeout"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithHTTPClient(&http.Client{
				Transport: otelhttp.NewTransport(http.DefaultTransport),
				Timeout:   d,
			}))
		}
		return NewProvider(config["api_url"], config["token"], opts...), nil
	})
}
