// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package sqlquery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/vagrants/blackbird-go/internal/agent/item"
	"github.com/vagrants/blackbird-go/internal/agent/plugin"
	"github.com/vagrants/blackbird-go/internal/agent/queue"
	configtypes "github.com/vagrants/blackbird-go/internal/agent/types/config"
	"github.com/vagrants/blackbird-go/internal/util/logger"
)

const (
	ModuleName = "sqlquery"

	// Query types
	QueryTypeOneRow  = "oneRow"
	QueryTypeColumns = "columns"

	// Supported drivers
	DriverMySQL      = "mysql"
	DriverPostgreSQL = "postgres"
	DriverSQLServer  = "sqlserver"

	defaultTimeout = 30 * time.Second
)

func init() {
	plugin.Default().Register(ModuleName, New)
}

// Collector runs a SQL query against a database and turns the result
// into metric items. With queryType "oneRow" the first row yields one
// item per column, keyed "<key>.<column>"; with "columns" every row must
// have two columns and yields one item keyed "<key>.<first column>".
type Collector struct {
	queue    *queue.Queue
	logger   logger.Logger
	hostname string

	driver    string
	dsn       string
	sqlQuery  string
	keyPrefix string
	queryType string
	timeout   time.Duration
}

// discoveryCollector wraps Collector with the low level discovery
// capability. The factory returns it only when a discovery_query option
// is present, so sections without one get no discovery job.
type discoveryCollector struct {
	*Collector

	discoveryQuery string
}

func New(opts configtypes.Options, q *queue.Queue, log logger.Logger) (plugin.Collector, error) {

	driver, ok := opts.GetString("driver")
	if !ok {
		return nil, fmt.Errorf("driver is required")
	}
	switch driver {
	case DriverMySQL, DriverPostgreSQL, DriverSQLServer:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	dsn, ok := opts.GetString("dsn")
	if !ok {
		return nil, fmt.Errorf("dsn is required")
	}

	sqlQuery, ok := opts.GetString("query")
	if !ok {
		return nil, fmt.Errorf("query is required")
	}

	keyPrefix, ok := opts.GetString("key")
	if !ok {
		return nil, fmt.Errorf("key is required")
	}

	queryType, ok := opts.GetString("query_type")
	if !ok {
		queryType = QueryTypeOneRow
	}
	switch queryType {
	case QueryTypeOneRow, QueryTypeColumns:
	default:
		return nil, fmt.Errorf("unsupported query type: %s", queryType)
	}

	timeout, ok := opts.GetSeconds("timeout")
	if !ok {
		timeout = defaultTimeout
	}

	hostname, _ := opts.GetString("hostname")

	collector := &Collector{
		queue:     q,
		logger:    log.WithName("sqlquery"),
		hostname:  hostname,
		driver:    driver,
		dsn:       dsn,
		sqlQuery:  sqlQuery,
		keyPrefix: keyPrefix,
		queryType: queryType,
		timeout:   timeout,
	}

	if discoveryQuery, ok := opts.GetString("discovery_query"); ok {
		return &discoveryCollector{
			Collector:      collector,
			discoveryQuery: discoveryQuery,
		}, nil
	}

	return collector, nil
}

// BuildItems connects, runs the configured query and enqueues the
// resulting metric items.
func (c *Collector) BuildItems() error {

	db, err := c.getConnection()
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	defer db.Close()

	columns, rows, err := c.queryRows(db, c.sqlQuery)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}

	switch c.queryType {
	case QueryTypeOneRow:
		err = c.buildOneRow(columns, rows)
	case QueryTypeColumns:
		err = c.buildColumns(columns, rows)
	}
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}

	return nil
}

// BuildDiscoveryItems runs the discovery query and emits one discovery
// item whose entities carry the row values keyed by the uppercased
// column names in {#NAME} macro form.
func (c *discoveryCollector) BuildDiscoveryItems() error {

	db, err := c.getConnection()
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	defer db.Close()

	columns, rows, err := c.queryRows(db, c.discoveryQuery)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}

	entities := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		entity := make(map[string]any, len(columns))
		for i, column := range columns {
			entity[fmt.Sprintf("{#%s}", column)] = row[i]
		}
		entities = append(entities, entity)
	}

	discovery, err := item.NewDiscoveryItem(c.keyPrefix+".discovery", entities, c.hostname, 0)
	if err != nil {
		return plugin.NewError(ModuleName, err)
	}
	c.queue.Put(discovery)

	return nil
}

// getConnection opens and pings a database connection.
func (c *Collector) getConnection() (*sql.DB, error) {

	db, err := sql.Open(c.driver, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetConnMaxLifetime(c.timeout)
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// queryRows runs the query and materializes the result as the ordered
// column names plus one value slice per row.
func (c *Collector) queryRows(db *sql.DB, query string) ([]string, [][]any, error) {

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return columns, result, nil
}

func (c *Collector) buildOneRow(columns []string, rows [][]any) error {

	if len(rows) == 0 {
		return fmt.Errorf("query returned no rows")
	}

	for i, column := range columns {
		key := fmt.Sprintf("%s.%s", c.keyPrefix, column)
		c.queue.Put(item.NewMetricItem(key, rows[0][i], c.hostname, 0))
	}

	return nil
}

func (c *Collector) buildColumns(columns []string, rows [][]any) error {

	if len(columns) != 2 {
		return fmt.Errorf("columns query must return exactly 2 columns, got %d", len(columns))
	}

	for _, row := range rows {
		key := fmt.Sprintf("%s.%v", c.keyPrefix, row[0])
		c.queue.Put(item.NewMetricItem(key, row[1], c.hostname, 0))
	}

	return nil
}

// normalizeValue converts driver byte slices to strings so item values
// JSON-encode as text instead of base64.
func normalizeValue(v any) any {

	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
