package server

import "github.com/zorak1103/dockdeck/internal/directory"

type portView struct {
	IP          string  `json:"ip,omitempty"`
	PrivatePort uint16  `json:"private_port"`
	PublicPort  *uint16 `json:"public_port,omitempty"`
	Protocol    string  `json:"protocol"`
}

type containerView struct {
	ID     string     `json:"id"`
	Names  []string   `json:"names"`
	Image  string     `json:"image"`
	State  string     `json:"state"`
	Status string     `json:"status"`
	Ports  []portView `json:"ports"`
}

func newContainerView(record directory.ContainerRecord) containerView {
	ports := make([]portView, 0, len(record.Ports))
	for _, p := range record.Ports {
		view := portView{IP: p.IP, PrivatePort: p.PrivatePort, Protocol: p.Protocol}
		if public, ok := p.PublicPort.Get(); ok {
			view.PublicPort = &public
		}
		ports = append(ports, view)
	}

	names := record.Names
	if names == nil {
		names = []string{}
	}

	return containerView{
		ID:     record.ID,
		Names:  names,
		Image:  record.Image,
		State:  record.State,
		Status: record.Status,
		Ports:  ports,
	}
}
