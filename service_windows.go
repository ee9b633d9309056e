//go:build windows

// Windows service support via github.com/kardianos/service, so the
// designer backend can run as a background service with proper
// Start/Stop handling.
package main

import (
	"fmt"

	"github.com/kardianos/service"
)

// Program implements service.Interface. Start launches the real run()
// sequence in a goroutine; Stop waits for it to return.
type Program struct {
	done chan struct{}
}

// Start is called when the service is started.
func (p *Program) Start(s service.Service) error {
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		run()
	}()
	return nil
}

// Stop is called when the service is stopped. The HTTP server's own
// shutdown handling runs inside run(); here we just wait for it.
func (p *Program) Stop(s service.Service) error {
	<-p.done
	return nil
}

// ServiceConfig returns the Windows service definition.
func ServiceConfig() *service.Config {
	return &service.Config{
		Name:        "AISweaterDesigner",
		DisplayName: "AI Sweater Designer",
		Description: "Multi-provider image generation backend for the sweater design tool",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

func newService() (service.Service, error) {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// RunAsService runs the application under the service manager. Returns
// false when launched interactively so main falls through to run().
func RunAsService() (bool, error) {
	if service.Interactive() {
		return false, nil
	}

	s, err := newService()
	if err != nil {
		return false, err
	}
	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}
	return true, nil
}

// HandleServiceCommand handles install/uninstall/start/stop subcommands.
// Returns true when a command was handled and the process should exit.
func HandleServiceCommand(args []string) bool {
	if len(args) == 0 {
		return false
	}

	var action func(service.Service) error
	switch args[0] {
	case "install":
		action = service.Service.Install
	case "uninstall":
		action = service.Service.Uninstall
	case "start":
		action = service.Service.Start
	case "stop":
		action = service.Service.Stop
	default:
		return false
	}

	s, err := newService()
	if err != nil {
		fmt.Println(err)
		return true
	}
	if err := action(s); err != nil {
		fmt.Printf("Service %s failed: %v\n", args[0], err)
		return true
	}
	fmt.Printf("Service %s succeeded\n", args[0])
	return true
}
