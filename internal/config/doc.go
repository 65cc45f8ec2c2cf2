// Package config loads taskly's configuration.
//
// Values come from, lowest precedence first: built-in defaults, an optional
// taskly.json in the working directory, an optional .env file, and TASKLY_*
// environment variables.
//
// # Configuration File Structure
//
//	{
//	  "addr": "localhost:3000",
//	  "apiBaseURL": "http://localhost:8000/",
//	  "dev": true,
//	  "logLevel": "info",
//	  "instances": {
//	    "max": 10000,
//	    "idleTimeout": "30m"
//	  },
//	  "live": {
//	    "readTimeout": "60s",
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "mockAPI": {
//	    "addr": "localhost:8000",
//	    "delay": "1s"
//	  }
//	}
//
// # Environment
//
//	TASKLY_ADDR, TASKLY_API_BASE_URL, TASKLY_DEV, TASKLY_LOG_LEVEL,
//	TASKLY_MAX_INSTANCES, TASKLY_INSTANCE_IDLE_TIMEOUT,
//	TASKLY_LIVE_READ_TIMEOUT, TASKLY_ALLOWED_ORIGINS,
//	TASKLY_MOCKAPI_ADDR, TASKLY_MOCKAPI_DELAY
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
