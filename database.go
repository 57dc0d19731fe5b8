/*
 * Copyright 2024 The InfluxFrame Authors
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

package influxframe

import (
	"context"
	"fmt"

	"github.com/influxdata/influxql"
)

// Database is a handle to an InfluxDB database.
type Database struct {
	c *Client

	// Name is the name of the database.
	Name string
}

// Database returns a handle to the named database. The database is neither
// checked nor created until one of the handle's methods is called.
func (c *Client) Database(name string) *Database {
	return &Database{
		c:    c,
		Name: name,
	}
}

// Create creates the database. Creating an existing database is not an error.
func (d *Database) Create(ctx context.Context) error {
	return d.exec(ctx, fmt.Sprintf(`CREATE DATABASE %s`, d.Identifier()))
}

// Drop drops the database and all of its data.
func (d *Database) Drop(ctx context.Context) error {
	return d.exec(ctx, fmt.Sprintf(`DROP DATABASE %s`, d.Identifier()))
}

func (d *Database) exec(ctx context.Context, query string) error {
	results, err := d.c.InfluxQL(query).Execute(ctx)
	if err != nil {
		return err
	}
	return StatementErrors(results)
}

// Identifier returns the name of the database as an InfluxQL identifier,
// quoted when it is not a bare identifier.
func (d *Database) Identifier() string {
	return influxql.QuoteIdent(d.Name)
}
