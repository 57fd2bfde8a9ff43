/*
Package config loads application configuration.

PURPOSE:
  Layered configuration: struct defaults, then an optional YAML file,
  then REBUDGET_-prefixed environment variables. A missing file is not
  an error; environment always wins.

EXAMPLE:
  REBUDGET_LISTEN=":9090" overrides listen
  REBUDGET_BUDGET_SCHEDULEMONTHS="24" overrides budget.schedulemonths
*/
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen string `koanf:"listen"`
	CORS   CORS   `koanf:"cors"`
	Budget Budget `koanf:"budget"`
}

type CORS struct {
	Origins []string `koanf:"origins"`
}

type Budget struct {
	// IndirectAccount overrides the rate document's designated
	// indirect-cost account when set.
	IndirectAccount string `koanf:"indirectaccount"`

	// ScheduleMonths is the default burn-schedule length.
	ScheduleMonths int `koanf:"schedulemonths"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8080",
		CORS: CORS{
			Origins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Budget: Budget{
			ScheduleMonths: 12,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config defaults: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "REBUDGET_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "REBUDGET_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
