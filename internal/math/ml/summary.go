package ml

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// LayerInfo describes a layer of the network.
type LayerInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Shape  int    `json:"shape"`
	Params int    `json:"params"`
}

// Layers lists the layers of the network in order.
func (n *Network) Layers() []LayerInfo {
	layers := make([]LayerInfo, 0, 2*len(n.dense))
	for l, d := range n.dense {
		name := "dropout"
		if l > 0 {
			name = fmt.Sprintf("dropout_%d", l)
		}
		layers = append(layers, LayerInfo{
			Name:  name,
			Type:  "Dropout",
			Shape: n.dropouts[l].dim,
		}, LayerInfo{
			Name:   d.meta.ID,
			Type:   "Dense",
			Shape:  d.out,
			Params: d.Params(),
		})
	}
	return layers
}

// Summary writes a table of the layers with their output shape and number of parameters.
func (n *Network) Summary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Layer (type)", "Output Shape", "Param #"})
	for _, l := range n.Layers() {
		table.Append([]string{
			fmt.Sprintf("%s (%s)", l.Name, l.Type),
			fmt.Sprintf("(None, %d)", l.Shape),
			humanize.Comma(int64(l.Params)),
		})
	}
	table.SetFooter([]string{"Output", n.head.Name(), humanize.Comma(int64(n.Params()))})
	table.Render()
	fmt.Fprintf(w, "Total params: %s\n", humanize.Comma(int64(n.Params())))
	fmt.Fprintf(w, "Trainable params: %s\n", humanize.Comma(int64(n.Params())))
	fmt.Fprintf(w, "Non-trainable params: 0\n")
}
