package charting

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"shiftstat/database"
)

// Generator handles chart image creation
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// HourlyPassFail renders the shift's hourly pass and fail counts as a
// PNG bar-less line chart, one point per hour bucket. The trailing SUM
// row is excluded.
func (g *Generator) HourlyPassFail(hours []database.HourTally) ([]byte, error) {
	if len(hours) == 0 {
		return nil, fmt.Errorf("no data for chart")
	}
	// Drop the SUM row if the caller passed the full table.
	if hours[len(hours)-1].Label == "SUM" {
		hours = hours[:len(hours)-1]
	}

	passSeries := chart.ContinuousSeries{
		Name: "Pass",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("27ae60"),
			StrokeWidth: 2,
		},
	}
	failSeries := chart.ContinuousSeries{
		Name: "Fail",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("e74c3c"),
			StrokeWidth: 2,
		},
	}

	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = h.Label
		passSeries.XValues = append(passSeries.XValues, float64(i))
		passSeries.YValues = append(passSeries.YValues, float64(h.Pass))
		failSeries.XValues = append(failSeries.XValues, float64(i))
		failSeries.YValues = append(failSeries.YValues, float64(h.Fail))
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Hour",
			ValueFormatter: func(v interface{}) string {
				i := int(v.(float64))
				if i < 0 || i >= len(labels) {
					return ""
				}
				return labels[i]
			},
		},
		YAxis: chart.YAxis{
			Name: "Records",
		},
		Series: []chart.Series{passSeries, failSeries},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	buffer := bytes.NewBuffer([]byte{})
	err := graph.Render(chart.PNG, buffer)
	return buffer.Bytes(), err
}
