/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package snmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/comcast/rpdusensors/config"
	"github.com/comcast/rpdusensors/pool"
	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// SysDescrOID is SNMPv2-MIB::sysDescr.0
const SysDescrOID = ".1.3.6.1.2.1.1.1.0"

var (
	// ErrNotDetected is returned when a device does not match a Detect rule
	ErrNotDetected = errors.New("device does not match detection rule")
)

// Tree is an SNMP table to fetch: the table entry OID and the column
// numbers to read from it, in the order they should appear in each row.
type Tree struct {
	Base    string
	Columns []string
}

// Detect decides if a device provides the data a check needs. Empty fields
// are skipped.
type Detect struct {
	SysDescrContains string
	Exists           string
}

// Walker is the subset of gosnmp.GoSNMP used by Client
type Walker interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	WalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
}

// Client reads tables from a single SNMP agent
type Client struct {
	target string
	walker Walker
	bulk   bool
	closer io.Closer
}

// NewClient connects to target, which is a host optionally followed by
// :port, using the transport settings from config.
func NewClient(ctx context.Context, target, community string) (*Client, error) {
	cfg := config.GetConfig()

	host, port, err := splitTarget(target, cfg.SNMPPort)
	if err != nil {
		return nil, err
	}

	g := &gosnmp.GoSNMP{
		Target:             host,
		Port:               port,
		Community:          community,
		Version:            snmpVersion(cfg.SNMPVersion),
		Timeout:            cfg.SNMPTimeout,
		Retries:            cfg.SNMPRetries,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     cfg.SNMPMaxRepetitions,
		ExponentialTimeout: true,
		Context:            ctx,
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("unable to connect to snmp agent %s - %w", target, err)
	}

	return &Client{
		target: target,
		walker: g,
		bulk:   g.Version != gosnmp.Version1,
		closer: g.Conn,
	}, nil
}

// NewClientWithWalker wraps an existing walker, bulk selects GETBULK walks
func NewClientWithWalker(target string, w Walker, bulk bool) *Client {
	return &Client{target: target, walker: w, bulk: bulk}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func (c *Client) walk(oid string) ([]gosnmp.SnmpPDU, error) {
	if c.bulk {
		return c.walker.BulkWalkAll(oid)
	}
	return c.walker.WalkAll(oid)
}

// Detect returns ErrNotDetected if the device fails the rule
func (c *Client) Detect(ctx context.Context, d Detect) error {
	log := zap.L()

	if d.SysDescrContains != "" {
		pkt, err := c.walker.Get([]string{SysDescrOID})
		if err != nil {
			return fmt.Errorf("unable to get sysDescr from %s - %w", c.target, err)
		}
		var descr string
		if pkt != nil && len(pkt.Variables) > 0 {
			descr = pduString(pkt.Variables[0])
		}
		if !strings.Contains(descr, d.SysDescrContains) {
			log.Debug("sysDescr does not match", zap.String("target", c.target), zap.String("sys_descr", descr),
				zap.Any("trace_id", ctx.Value("traceID")))
			return ErrNotDetected
		}
	}

	if d.Exists != "" {
		root := normalizeOID(d.Exists)
		pdus, err := c.walk(root)
		if err != nil {
			return fmt.Errorf("unable to walk %s on %s - %w", root, c.target, err)
		}
		if len(subtree(root+".", pdus)) == 0 {
			log.Debug("oid subtree is empty", zap.String("target", c.target), zap.String("oid", d.Exists),
				zap.Any("trace_id", ctx.Value("traceID")))
			return ErrNotDetected
		}
	}

	return nil
}

// FetchTable walks every column of t and joins the cells by row index
func (c *Client) FetchTable(ctx context.Context, t Tree) ([][]string, error) {
	walks := make([][]gosnmp.SnmpPDU, 0, len(t.Columns))
	for _, col := range t.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		oid := normalizeOID(t.Base) + "." + col
		pdus, err := c.walk(oid)
		if err != nil {
			return nil, fmt.Errorf("unable to walk %s on %s - %w", oid, c.target, err)
		}
		walks = append(walks, pdus)
	}

	return buildTable(t, walks), nil
}

// Tables fetches every tree, one walk at a time, and returns the tables in
// the order of trees
func (c *Client) Tables(ctx context.Context, trees ...Tree) ([][][]string, error) {
	var tasks []*pool.Task
	for _, t := range trees {
		tasks = append(tasks, pool.NewTask(t.Base, func() ([][]string, error) {
			return c.FetchTable(ctx, t)
		}))
	}

	p := pool.NewPool(tasks, 1)
	p.Run()

	tables := make([][][]string, 0, len(p.Tasks))
	for _, task := range p.Tasks {
		if task.Err != nil {
			return nil, task.Err
		}
		tables = append(tables, task.Rows)
	}
	return tables, nil
}

func snmpVersion(v string) gosnmp.SnmpVersion {
	switch strings.ToLower(strings.TrimPrefix(v, "v")) {
	case "1":
		return gosnmp.Version1
	default:
		return gosnmp.Version2c
	}
}

func splitTarget(target string, defaultPort uint16) (string, uint16, error) {
	host, p, err := net.SplitHostPort(target)
	if err != nil {
		// no port in target
		return target, defaultPort, nil
	}
	port, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in target %s - %w", target, err)
	}
	return host, uint16(port), nil
}
