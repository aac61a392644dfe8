package util

import "github.com/influxdata/influxdb-client-go/api/write"

// NopWriteAPI is an influx write API that discards everything. Used as the
// default metrics sink when no InfluxDB endpoint is configured.
type NopWriteAPI struct{}

// WriteRecord discards the line protocol record.
func (n *NopWriteAPI) WriteRecord(line string) {}

// WritePoint discards the point.
func (n *NopWriteAPI) WritePoint(point *write.Point) {}

// Flush does nothing; there is never anything buffered.
func (n *NopWriteAPI) Flush() {}

// Close does nothing.
func (n *NopWriteAPI) Close() {}

// Errors returns a nil channel; no writes means no errors.
func (n *NopWriteAPI) Errors() <-chan error { return nil }
