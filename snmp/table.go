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
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// buildTable joins column walks into rows. Rows are keyed by the OID index
// that follows the column number and keep the order in which an index was
// first seen. Cells a column did not return are left empty.
func buildTable(t Tree, walks [][]gosnmp.SnmpPDU) [][]string {
	var order []string
	rows := make(map[string][]string)

	for i, pdus := range walks {
		prefix := normalizeOID(t.Base) + "." + t.Columns[i] + "."
		for _, pdu := range subtree(prefix, pdus) {
			index := strings.TrimPrefix(normalizeOID(pdu.Name), prefix)
			row, ok := rows[index]
			if !ok {
				row = make([]string, len(t.Columns))
				rows[index] = row
				order = append(order, index)
			}
			row[i] = pduString(pdu)
		}
	}

	table := make([][]string, 0, len(order))
	for _, index := range order {
		table = append(table, rows[index])
	}
	return table
}

// subtree drops PDUs outside prefix as well as the exception values agents
// return for missing objects
func subtree(prefix string, pdus []gosnmp.SnmpPDU) []gosnmp.SnmpPDU {
	var out []gosnmp.SnmpPDU
	for _, pdu := range pdus {
		switch pdu.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
			continue
		}
		if strings.HasPrefix(normalizeOID(pdu.Name), prefix) {
			out = append(out, pdu)
		}
	}
	return out
}

func normalizeOID(oid string) string {
	oid = strings.TrimSuffix(oid, ".*")
	if !strings.HasPrefix(oid, ".") {
		return "." + oid
	}
	return oid
}

// pduString renders a value the way it appears in an SNMP table: octet
// strings as text, numbers in decimal
func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return ""
	case gosnmp.OctetString:
		switch v := pdu.Value.(type) {
		case []byte:
			return string(v)
		case string:
			return v
		}
		return ""
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		if v, ok := pdu.Value.(string); ok {
			return v
		}
		return ""
	case gosnmp.OpaqueFloat:
		if v, ok := pdu.Value.(float32); ok {
			return strconv.FormatFloat(float64(v), 'f', -1, 32)
		}
		return ""
	case gosnmp.OpaqueDouble:
		if v, ok := pdu.Value.(float64); ok {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return ""
	}
	return gosnmp.ToBigInt(pdu.Value).String()
}
