package tracing

import (
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var GlobalTracer = otel.Tracer("fitcoach-backend")

// HoneycombSetup configures the OpenTelemetry SDK via the honeycomb
// distro. The returned func shuts the exporter down and is always safe
// to call.
func HoneycombSetup(enabled bool, serviceName string) (func(), error) {
	if !enabled {
		log.Debugln("tracing: honeycomb disabled, spans will not be exported")
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, err
	}

	log.Debugf("tracing: honeycomb set up for service %s", serviceName)
	return otelShutdown, nil
}
