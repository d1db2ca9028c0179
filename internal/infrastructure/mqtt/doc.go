// Package mqtt provides MQTT client connectivity for the liftnet daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the shared pub/sub channel connecting every client of the world.
// The channel has no ordering guarantees and no point-to-point delivery:
// directed messages are broadcast and filtered client-side. For backward
// compatibility, every logical message is also emitted on a legacy
// per-event topic, so the same message can arrive twice; the messaging
// package de-duplicates by request ID.
//
//	player client ↔ MQTT Broker ↔ authority (GM) client
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.Socket(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
