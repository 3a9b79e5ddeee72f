package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

var (
	serviceStart     bool
	serviceStop      bool
	serviceInstall   bool
	serviceUninstall bool
	serviceStatus    bool
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the autosync daemon as a system service",
	Long: `Install, uninstall, start, stop, or check the status of the autosync
daemon as a system service, so sync passes run at boot and on schedule
without manual intervention.

On Windows, this creates/manages a Windows Service.
On Linux/macOS, this creates/manages a systemd/launchd service.`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	serviceCmd.Flags().BoolVar(&serviceStart, "start", false, "Start the autosync service")
	serviceCmd.Flags().BoolVar(&serviceStop, "stop", false, "Stop the autosync service")
	serviceCmd.Flags().BoolVar(&serviceInstall, "install", false, "Install autosync as a system service")
	serviceCmd.Flags().BoolVar(&serviceUninstall, "uninstall", false, "Uninstall the autosync system service")
	serviceCmd.Flags().BoolVar(&serviceStatus, "status", false, "Check the autosync service status")
}

// program implements the service.Interface by running the daemon loop in
// a child process.
type program struct{}

func (p *program) Start(service.Service) error {
	// Start should not block. Do the actual work async.
	go p.run()
	return nil
}

func (p *program) run() {
	exe, err := os.Executable()
	if err != nil {
		_ = service.ConsoleLogger.Errorf("Failed to locate autosync executable: %v", err)
		return
	}

	cmd := exec.Command(exe, "daemon")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		_ = service.ConsoleLogger.Errorf("Daemon exited with error: %v", err)
	}
}

func (p *program) Stop(service.Service) error {
	// Stop should not block. Return within a few seconds.
	return nil
}

func runService(_ *cobra.Command, _ []string) error {
	flagCount := 0
	for _, set := range []bool{serviceStart, serviceStop, serviceInstall, serviceUninstall, serviceStatus} {
		if set {
			flagCount++
		}
	}

	if flagCount == 0 {
		return fmt.Errorf("please specify one of: --start, --stop, --install, --uninstall, --status")
	}

	if flagCount > 1 {
		return fmt.Errorf("please specify only one operation at a time")
	}

	svcConfig := &service.Config{
		Name:        "autosync",
		DisplayName: "Autosync Repository Synchronizer",
		Description: "Keeps registered git repositories synchronized with their remotes",
		Arguments:   []string{"daemon"},
	}

	s, err := service.New(&program{}, svcConfig)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	switch {
	case serviceInstall:
		if err := s.Install(); err != nil {
			return fmt.Errorf("failed to install service: %w", err)
		}

		fmt.Println("service installed; start it with 'autosync service --start'")
		return nil

	case serviceUninstall:
		// Try to stop first
		_ = s.Stop()

		if err := s.Uninstall(); err != nil {
			return fmt.Errorf("failed to uninstall service: %w", err)
		}

		fmt.Println("service uninstalled")
		return nil

	case serviceStart:
		if err := s.Start(); err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}

		fmt.Println("service started")
		return nil

	case serviceStop:
		if err := s.Stop(); err != nil {
			return fmt.Errorf("failed to stop service: %w", err)
		}

		fmt.Println("service stopped")
		return nil

	case serviceStatus:
		st, err := s.Status()
		if err != nil {
			return fmt.Errorf("failed to query service status: %w", err)
		}

		switch st {
		case service.StatusRunning:
			fmt.Println("service is running")
		case service.StatusStopped:
			fmt.Println("service is stopped")
		default:
			fmt.Println("service status unknown")
		}

		return nil
	}

	return nil
}
