// Command vmanage-inventory prints the device inventory of a vManage
// controller, optionally with per-device interface, TLOC and VRRP detail.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	vmanage "github.com/lexfrei/go-vmanage"
)

func main() {
	app := &cli.App{
		Name:  "vmanage-inventory",
		Usage: "list devices known to a vManage controller",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Usage:    "controller hostname or address",
				EnvVars:  []string{"VMANAGE_HOST"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "controller HTTPS port",
				EnvVars: []string{"VMANAGE_PORT"},
				Value:   vmanage.DefaultPort,
			},
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				EnvVars:  []string{"VMANAGE_USERNAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				EnvVars:  []string{"VMANAGE_PASSWORD"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "verify-tls",
				Usage: "verify the controller's TLS certificate",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "cap on simultaneous controller requests",
				Value: vmanage.DefaultConcurrency,
			},
			&cli.BoolFlag{
				Name:  "detail",
				Usage: "also fetch interfaces, TLOCs and VRRP per device",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every controller request",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := logrus.New()
	if c.Bool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx := c.Context

	client, err := vmanage.NewWithConfig(ctx, &vmanage.Config{
		Host:        c.String("host"),
		Port:        c.Int("port"),
		Username:    c.String("username"),
		Password:    c.String("password"),
		VerifyTLS:   c.Bool("verify-tls"),
		Concurrency: c.Int("concurrency"),
		Debug:       c.Bool("debug"),
		Logger:      newLogrusAdapter(logger),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("controller unreachable: %v", err), 1)
	}
	if !client.Connected() {
		return cli.Exit("login rejected: check credentials", 1)
	}

	devices, err := client.GetDevices(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to collect inventory: %v", err), 1)
	}

	printDevices(devices)

	if c.Bool("detail") {
		return printDetail(ctx, client, devices)
	}

	return nil
}

func printDevices(devices map[string]vmanage.Device) {
	// Stable output order: hostname, then UUID for unnamed devices.
	ordered := make([]vmanage.Device, 0, len(devices))
	for _, device := range devices {
		ordered = append(ordered, device)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Hostname != ordered[j].Hostname {
			return ordered[i].Hostname < ordered[j].Hostname
		}
		return ordered[i].UUID < ordered[j].UUID
	})

	bold := color.New(color.Bold)
	up := color.New(color.FgGreen)
	down := color.New(color.FgRed)

	bold.Printf("%-20s %-10s %-16s %-14s %-10s %s\n",
		"HOSTNAME", "PERSONA", "SYSTEM-IP", "MODEL", "VERSION", "STATE")

	for _, device := range ordered {
		hostname := device.Hostname
		if hostname == "" {
			hostname = device.UUID
		}

		systemIP := "-"
		if device.SystemIP.IsValid() {
			systemIP = device.SystemIP.String()
		}

		state := up.Sprint("reachable")
		if !device.IsReachable {
			state = down.Sprint("unreachable")
		}

		fmt.Printf("%-20s %-10s %-16s %-14s %-10s %s\n",
			hostname, device.Persona, systemIP, device.Model, device.Version, state)
	}
}

func printDetail(ctx context.Context, client *vmanage.Client, devices map[string]vmanage.Device) error {
	section := color.New(color.Bold, color.FgCyan)

	for _, device := range devices {
		if !device.SystemIP.IsValid() {
			continue
		}

		section.Printf("\n%s (%s)\n", device.Hostname, device.SystemIP)

		interfaces, err := client.GetDeviceInterfaces(ctx, device)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to fetch interfaces for %s: %v", device.Hostname, err), 1)
		}
		for _, iface := range interfaces {
			fmt.Printf("  if  %-12s vpn %-4s %-18s %s\n",
				iface.Name, iface.VPNID, iface.Network, iface.Description)
		}

		tlocs, err := client.GetDeviceTLOCs(ctx, device)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to fetch TLOCs for %s: %v", device.Hostname, err), 1)
		}
		for _, tloc := range tlocs {
			fmt.Printf("  tloc %-12s %-6s pub %-16s pref %d\n",
				tloc.Color, tloc.Encapsulation, tloc.PublicIP, tloc.Preference)
		}

		groups, err := client.GetDeviceVRRP(ctx, device)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to fetch VRRP for %s: %v", device.Hostname, err), 1)
		}
		for _, group := range groups {
			role := "backup"
			if group.IsMaster {
				role = "master"
			}
			fmt.Printf("  vrrp %-12s grp %-3d vip %-16s %s\n",
				group.InterfaceName, group.GroupID, group.VirtualIP, role)
		}
	}

	return nil
}
