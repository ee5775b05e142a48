// Package camship provides an embeddable agent that streams JPEG camera
// frames and JSON telemetry to a stream server over WebSocket.
//
// # Usage
//
//	cfg := camship.DefaultConfig()
//	cfg.ServerHost = "stream.example.com"
//	cfg.AuthToken = "your-token"
//
//	agent, err := camship.New(cfg, camship.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := agent.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer agent.Stop()
//
// The agent runs a single-threaded streaming loop: it polls the
// transport, reconnects with bounded backoff when the session drops,
// sends a heartbeat on schedule, and ships each captured frame as a
// JSON metadata message followed by the binary JPEG.
//
// # Plugins
//
// Optional behavior is packaged as plugins initialized at Start and shut
// down in reverse order at Stop. See plugins/configwatcher for an example.
package camship
