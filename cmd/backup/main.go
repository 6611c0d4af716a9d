package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"taskmaster/internal/app"
	"taskmaster/internal/config"
	"taskmaster/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	exportFormat := exportCmd.String("format", "", "Backup format: json or yaml (default: from file extension)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importFormat := importCmd.String("format", "", "Backup format: json or yaml (default: from file extension)")
	importForce := importCmd.Bool("force", false, "Replace existing state (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := app.NewLogger(cfg)

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer a.Close()

	backupService := a.Backup()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := handleExport(ctx, backupService, *exportOutput, *exportFormat); err != nil {
			logger.Fatalf("Export failed: %v", err)
		}

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := handleImport(ctx, backupService, *importInput, *importFormat, *importForce); err != nil {
			if errors.Is(err, service.ErrStateExists) {
				logger.Fatal("Import refused: the store already has a session or tasks. Re-run with -force to replace it.")
			}
			logger.Fatalf("Import failed: %v", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func resolveFormat(flagValue, path string) (service.BackupFormat, error) {
	if flagValue == "" {
		return service.FormatForPath(path), nil
	}
	return service.ParseBackupFormat(flagValue)
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath, formatFlag string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		ext := "json"
		if formatFlag != "" {
			f, err := service.ParseBackupFormat(formatFlag)
			if err != nil {
				return err
			}
			ext = string(f)
		}
		outputPath = fmt.Sprintf("backup_%s.%s", time.Now().Format("20060102_150405"), ext)
	}
	format, err := resolveFormat(formatFlag, outputPath)
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	log.Infof("Exporting state to: %s", outputPath)
	if _, err := backupService.Export(ctx, f, format); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}

	fileInfo, err := f.Stat()
	if err == nil {
		log.Infof("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
	}
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath, formatFlag string, force bool) error {
	format, err := resolveFormat(formatFlag, inputPath)
	if err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if force {
		fmt.Print("WARNING: This will replace the stored state. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Info("Import cancelled")
			return nil
		}
	}

	log.Infof("Importing state from: %s", inputPath)
	backup, err := backupService.Import(ctx, f, format, force)
	if err != nil {
		return err
	}
	log.Infof("Import complete! %d tasks restored for %q", len(backup.State.Tasks), backup.State.User.Name)
	return nil
}

func printUsage() {
	fmt.Println("Taskmaster Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export stored state to a file")
	fmt.Println("  backup import [options]    Import stored state from a file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println("  -format <fmt>     json or yaml (default: from file extension)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -format <fmt>     json or yaml (default: from file extension)")
	fmt.Println("  -force            Replace existing state (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -output state.yaml")
	fmt.Println("  backup import -input state.yaml -force")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    sqlite, postgres, mysql, redis or memory (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./taskmaster.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  REDIS_URL        Redis connection URL")
	fmt.Println("  STORAGE_KEY      Key the state is stored under (default: taskmaster_data)")
}
