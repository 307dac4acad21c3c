package fleet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"

	"github.com/rickgorman/dockers/internal/engine"
)

// ListOptions controls List.
type ListOptions struct {
	All     bool
	Size    bool
	Filters []string
}

var listHeaders = []string{"CONTAINER ID", "IMAGE", "COMMAND", "CREATED", "STATUS", "PORTS", "NAMES"}

// List prints a table of containers.
func (f *Fleet) List(ctx context.Context, opts ListOptions) error {
	filters, err := ParseFilters(opts.Filters)
	if err != nil {
		return err
	}

	containers, err := f.eng.List(ctx, engine.ListOptions{All: opts.All, Size: opts.Size, Filters: filters})
	if err != nil {
		return err
	}

	headers := append([]string(nil), listHeaders...)
	if opts.Size {
		headers = append(headers, "SIZE")
	}

	now := f.now()
	rows := make([][]string, 0, len(containers))
	for _, c := range containers {
		row := []string{
			c.Ref.ShortID(),
			c.Image,
			quoteCommand(c.Command),
			created(now, c.Created),
			c.Status,
			formatPorts(c.Ports),
			formatNames(c.Names),
		}
		if opts.Size {
			row = append(row, formatSize(c.SizeRw, c.SizeRootFs))
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(f.out, renderTable(headers, rows))
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

func quoteCommand(cmd string) string {
	if cmd == "" {
		return ""
	}
	return strconv.Quote(cmd)
}

func created(now time.Time, unix int64) string {
	if unix == 0 {
		return ""
	}
	return units.HumanDuration(now.Sub(time.Unix(unix, 0))) + " ago"
}

func formatPorts(ports []engine.PortSummary) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		proto := p.Type
		if proto == "" {
			proto = "tcp"
		}
		if p.PublicPort == 0 {
			parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, proto))
			continue
		}
		host := strconv.Itoa(int(p.PublicPort))
		if p.IP != "" {
			host = p.IP + ":" + host
		}
		parts = append(parts, fmt.Sprintf("%s->%d/%s", host, p.PrivatePort, proto))
	}
	return strings.Join(parts, ", ")
}

func formatNames(names []string) string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		cleaned = append(cleaned, engine.CleanName(n))
	}
	return strings.Join(cleaned, ", ")
}

func formatSize(rw, rootFs int64) string {
	return fmt.Sprintf("%s (virtual %s)", humanSize(rw), humanSize(rootFs))
}

func humanSize(n int64) string {
	return units.HumanSizeWithPrecision(float64(n), 3)
}
