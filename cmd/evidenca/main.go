package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zanvidmar/evidenca/internal/api"
	"github.com/zanvidmar/evidenca/internal/config"
	"github.com/zanvidmar/evidenca/internal/groups"
	"github.com/zanvidmar/evidenca/internal/inventory"
	"github.com/zanvidmar/evidenca/internal/logging"
	"github.com/zanvidmar/evidenca/internal/model"
	"github.com/zanvidmar/evidenca/internal/session"
	"github.com/zanvidmar/evidenca/internal/storage"
)

func usage() {
	fmt.Fprint(os.Stdout, `Usage: evidenca [flags] <command> [args]

Commands:
  login <email>                  log in to the backend
  logout                         log out and clear local credentials
  whoami                         show the current session
  sync                           pull devices and assignments into local state
  devices                        list cached devices with availability
  availability <device-id>       show committed/available units for a device
  categories                     list device categories
  groups list                    list device groups
  groups create <name> [id ...]  create a device group
  groups delete <group-id>       delete a device group

Flags:
  -c, -config <path>   config file (default: evidenca.yaml)
  -h, -help            show this help and exit
`)
}

func main() {
	args := os.Args[1:]

	configPath := "evidenca.yaml"
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-c", "-config", "--config":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "missing config path")
				os.Exit(1)
			}
			configPath = args[1]
			args = args[2:]
		case "-h", "-help", "--help":
			usage()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[0])
			usage()
			os.Exit(1)
		}
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	store, err := storage.OpenSQLite(cfg.StatePath)
	if err != nil {
		slog.Error("failed to open local state", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.New(cfg.ServerURL, store, api.Options{Timeout: cfg.Timeout()})
	manager := session.NewManager(client, store, slog.Default())

	ctx := context.Background()
	manager.Bootstrap(ctx)

	if err := run(ctx, args, manager, client, store); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, manager *session.Manager, client *api.Client, store storage.Store) error {
	switch args[0] {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: evidenca login <email>")
		}
		return cmdLogin(ctx, manager, args[1])
	case "logout":
		manager.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return cmdWhoami(manager)
	case "sync":
		return cmdSync(ctx, manager, client, store)
	case "devices":
		return cmdDevices(ctx, store)
	case "availability":
		if len(args) != 2 {
			return fmt.Errorf("usage: evidenca availability <device-id>")
		}
		return cmdAvailability(ctx, store, args[1])
	case "categories":
		return cmdCategories(ctx, store)
	case "groups":
		return cmdGroups(ctx, store, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func cmdLogin(ctx context.Context, manager *session.Manager, email string) error {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	if !manager.Login(ctx, email, password) {
		return fmt.Errorf("login failed")
	}

	user := manager.User()
	fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func cmdWhoami(manager *session.Manager) error {
	if !manager.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	user := manager.User()
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	if user.DepartmentID != "" {
		fmt.Printf("  Department: %s\n", user.DepartmentID)
	}
	return nil
}

func cmdSync(ctx context.Context, manager *session.Manager, client *api.Client, store storage.Store) error {
	if !manager.IsAuthenticated() {
		return fmt.Errorf("not logged in")
	}

	devices, err := client.ListDevices(ctx, "")
	if err != nil {
		return fmt.Errorf("fetching devices: %w", err)
	}
	if err := storage.SaveDevices(ctx, store, devices); err != nil {
		return err
	}

	assignments, err := client.ListAssignments(ctx, "")
	if err != nil {
		return fmt.Errorf("fetching assignments: %w", err)
	}
	if err := storage.SaveAssignments(ctx, store, assignments); err != nil {
		return err
	}

	fmt.Printf("Synced %d devices, %d assignments.\n", len(devices), len(assignments))
	return nil
}

func cmdDevices(ctx context.Context, store storage.Store) error {
	devices, err := storage.LoadDevices(ctx, store)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No cached devices. Run 'evidenca sync' first.")
		return nil
	}

	assignments, err := storage.LoadAssignments(ctx, store)
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-24s %-12s %-12s %6s %10s\n",
		"ASSET TAG", "NAME", "CATEGORY", "STATUS", "TOTAL", "AVAILABLE")
	for _, d := range devices {
		fmt.Printf("%-12s %-24s %-12s %-12s %6d %10d\n",
			d.AssetTag, d.Name, d.Category, d.Status, d.Quantity,
			inventory.AvailableQuantity(d, assignments))
	}
	return nil
}

func cmdAvailability(ctx context.Context, store storage.Store, deviceID string) error {
	devices, err := storage.LoadDevices(ctx, store)
	if err != nil {
		return err
	}
	assignments, err := storage.LoadAssignments(ctx, store)
	if err != nil {
		return err
	}

	for _, d := range devices {
		if d.ID != deviceID && d.AssetTag != deviceID {
			continue
		}
		committed := inventory.CommittedQuantity(d.ID, assignments)
		fmt.Printf("%s (%s)\n", d.Name, d.AssetTag)
		fmt.Printf("  Total:     %d\n", d.Quantity)
		fmt.Printf("  Committed: %d\n", committed)
		fmt.Printf("  Available: %d\n", inventory.AvailableQuantity(d, assignments))
		return nil
	}
	return fmt.Errorf("device %q not found in local state", deviceID)
}

func cmdCategories(ctx context.Context, store storage.Store) error {
	categories, err := storage.LoadCategories(ctx, store)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func cmdGroups(ctx context.Context, store storage.Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: evidenca groups <list|create|delete>")
	}

	switch args[0] {
	case "list":
		list, err := groups.List(ctx, store)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No groups.")
			return nil
		}
		for _, g := range list {
			fmt.Printf("%s  %s (%d devices)\n", g.ID, g.Name, len(g.DeviceIDs))
		}
		return nil
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: evidenca groups create <name> [device-id ...]")
		}
		group, err := groups.Create(ctx, store, model.DeviceGroup{
			Name: args[1], DeviceIDs: args[2:],
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created group %s (%s)\n", group.Name, group.ID)
		return nil
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: evidenca groups delete <group-id>")
		}
		if err := groups.Delete(ctx, store, args[1]); err != nil {
			return err
		}
		fmt.Println("Group deleted.")
		return nil
	default:
		return fmt.Errorf("unknown groups command: %s", args[0])
	}
}
