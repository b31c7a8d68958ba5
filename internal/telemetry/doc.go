// Package telemetry provides OpenTelemetry instrumentation for briefd.
//
// It manages the TracerProvider and MeterProvider lifecycle, exporting to an
// OTLP collector over gRPC or HTTP/protobuf. Telemetry failures never crash
// the service; initialization errors degrade the instance to no-op providers.
//
// Usage:
//
//	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	tracer := tel.Tracer("briefd.assembly")
package telemetry
