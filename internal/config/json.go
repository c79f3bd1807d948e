package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Site struct {
		URL      string `json:"url"`
		Username string `json:"username"`
		Password string `json:"password"`
		Token    string `json:"token"`
		Referer  string `json:"referer"`
	} `json:"site,omitempty"`

	Client struct {
		RequestTimeout Duration `json:"request_timeout"`
		RetryCount     int      `json:"retry_count"`
		RetryWaitTime  Duration `json:"retry_wait"`
	} `json:"client,omitempty"`

	Replica struct {
		PollInitialInterval Duration `json:"poll_initial_interval"`
		PollMaxInterval     Duration `json:"poll_max_interval"`
		PollMaxElapsedTime  Duration `json:"poll_max_elapsed_time"`
		OutDir              string   `json:"out_dir"`
	} `json:"replica,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Site: Site{
			URL:      jsonCfg.Site.URL,
			Username: jsonCfg.Site.Username,
			Password: jsonCfg.Site.Password,
			Token:    jsonCfg.Site.Token,
			Referer:  jsonCfg.Site.Referer,
		},
		Client: Client{
			RequestTimeout: time.Duration(jsonCfg.Client.RequestTimeout),
			RetryCount:     jsonCfg.Client.RetryCount,
			RetryWaitTime:  time.Duration(jsonCfg.Client.RetryWaitTime),
		},
		Replica: Replica{
			PollInitialInterval: time.Duration(jsonCfg.Replica.PollInitialInterval),
			PollMaxInterval:     time.Duration(jsonCfg.Replica.PollMaxInterval),
			PollMaxElapsedTime:  time.Duration(jsonCfg.Replica.PollMaxElapsedTime),
			OutDir:              jsonCfg.Replica.OutDir,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
