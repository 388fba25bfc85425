package config

import (
	"fmt"
	"strings"
	"time"
)

// Agent names served by `neurohub agent <name>`. The first four are the
// dispatch categories known to the router.
const (
	AgentDocumentation      = "documentation"
	AgentSignalProcessor    = "signal_processor"
	AgentExperimentDesigner = "experiment_designer"
	AgentOrchestrator       = "orchestrator"
	AgentResearchAssistant  = "research_assistant"
)

// RouterCategories is the order endpoints are registered with the router.
var RouterCategories = []string{
	AgentDocumentation,
	AgentSignalProcessor,
	AgentExperimentDesigner,
	AgentOrchestrator,
}

// DefaultAgentPorts are the listening ports used when nothing is configured.
var DefaultAgentPorts = map[string]int{
	AgentDocumentation:      8002,
	AgentSignalProcessor:    8003,
	AgentExperimentDesigner: 8004,
	AgentOrchestrator:       8005,
	AgentResearchAssistant:  10010,
}

// AgentsConfig describes where agents listen and where the router finds them.
type AgentsConfig struct {
	DefinitionsFile string            `mapstructure:"definitions_file"`
	Host            string            `mapstructure:"host"`
	Ports           map[string]int    `mapstructure:"ports"`
	Endpoints       map[string]string `mapstructure:"endpoints"`
	ProbeTimeout    time.Duration     `mapstructure:"probe_timeout"`
	InvokeTimeout   time.Duration     `mapstructure:"invoke_timeout"`
}

// Normalize fills ports and endpoints left empty.
func (a AgentsConfig) Normalize() AgentsConfig {
	if strings.TrimSpace(a.Host) == "" {
		a.Host = "0.0.0.0"
	}
	ports := make(map[string]int, len(DefaultAgentPorts))
	for name, port := range DefaultAgentPorts {
		ports[name] = port
	}
	for name, port := range a.Ports {
		if port > 0 {
			ports[strings.ToLower(name)] = port
		}
	}
	a.Ports = ports

	endpoints := make(map[string]string, len(ports))
	for name := range ports {
		endpoints[name] = fmt.Sprintf("http://localhost:%d", ports[name])
	}
	for name, ep := range a.Endpoints {
		if ep = strings.TrimRight(strings.TrimSpace(ep), "/"); ep != "" {
			endpoints[strings.ToLower(name)] = ep
		}
	}
	a.Endpoints = endpoints

	if a.ProbeTimeout <= 0 {
		a.ProbeTimeout = 30 * time.Second
	}
	if a.InvokeTimeout <= 0 {
		a.InvokeTimeout = 120 * time.Second
	}
	return a
}

// Addr returns the listen address for the named agent.
func (a AgentsConfig) Addr(name string) (string, error) {
	port, ok := a.Ports[name]
	if !ok {
		return "", fmt.Errorf("unknown agent %q", name)
	}
	return fmt.Sprintf("%s:%d", a.Host, port), nil
}
