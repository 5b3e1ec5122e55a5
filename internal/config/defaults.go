package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "fulfillment",
	Pass: "fulfillment",
	Name: "fulfillment_db",
}

var defaultRetry = Retry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    200 * time.Millisecond,
}

var defaultDelivery = Delivery{
	PendingTTL:      30 * time.Minute,
	ReleaseInterval: time.Minute,
}

// Defaults returns a Config with every setting at its default value.
func Defaults() Config {
	return Config{
		Port:      defaultPort,
		PprofPort: 6060,
		PublicURL: "https://feiralivre.com.br",
		DB:        defaultDB,
		Kafka: Kafka{
			PaymentTopic:  "payment-events",
			StatusTopic:   "order-status-events",
			ConsumerGroup: "fulfillment-worker",
		},
		Gateways: Gateways{
			GeocoderURL:      "http://localhost:8091",
			GeocoderTimeout:  2 * time.Second,
			PaymentURL:       "http://localhost:8092",
			PaymentTimeout:   5 * time.Second,
			OptimizerURL:     "http://localhost:8093",
			OptimizerTimeout: 3 * time.Second,
			CatalogURL:       "http://localhost:8094",
			CatalogTimeout:   2 * time.Second,
			Retry:            defaultRetry,
		},
		// Armazém central, São Paulo.
		Warehouse: Warehouse{Lat: -23.5505, Lng: -46.6333},
		Delivery:  defaultDelivery,
		RateLimit: RateLimit{Rate: 10, Burst: 20},
	}
}
