//go:build linux

package netlinkinfo

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// List returns every interface visible in the current network namespace.
func List() ([]Interface, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("netlinkinfo: list links: %w", err)
	}

	out := make([]Interface, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		out = append(out, Interface{
			Name:  attrs.Name,
			Index: attrs.Index,
			MAC:   attrs.HardwareAddr.String(),
			Up:    attrs.Flags&netlink.FlagUp != 0,
		})
	}
	return out, nil
}

// ByName resolves a single interface by name, or an error if it is not
// present in the current network namespace.
func ByName(name string) (Interface, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return Interface{}, fmt.Errorf("netlinkinfo: lookup %q: %w", name, err)
	}
	attrs := link.Attrs()
	return Interface{
		Name:  attrs.Name,
		Index: attrs.Index,
		MAC:   attrs.HardwareAddr.String(),
		Up:    attrs.Flags&netlink.FlagUp != 0,
	}, nil
}
