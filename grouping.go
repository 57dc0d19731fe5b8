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

// firstStatement returns the tables of the first statement, or its error.
func firstStatement[T any](results []StatementResult[T]) ([]TaggedTable[T], error) {
	if len(results) == 0 {
		return nil, ErrEmptyResult
	}
	if err := results[0].Err; err != nil {
		return nil, err
	}
	return results[0].Tables, nil
}

// FirstTable returns the first table of the first statement.
//
// ErrEmptyResult is returned if there is no statement or the first statement
// returned no table. If the first statement failed, its error is returned.
func FirstTable[T any](results []StatementResult[T]) (T, error) {
	var zero T
	tables, err := firstStatement(results)
	if err != nil {
		return zero, err
	}
	if len(tables) == 0 {
		return zero, ErrEmptyResult
	}
	return tables[0].Table, nil
}

// GroupByTag maps the value of tag to the table carrying it, for every table
// of the first statement.
//
// ErrMissingTags is returned if a table has no tags at all, and a
// *MissingTagError if a table has tags but not the requested one. When two
// tables share a tag value, the later one wins.
func GroupByTag[T any](results []StatementResult[T], tag string) (map[string]T, error) {
	tables, err := firstStatement(results)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]T, len(tables))
	for _, t := range tables {
		if t.Tags == nil {
			return nil, ErrMissingTags
		}
		v, ok := t.Tags[tag]
		if !ok {
			return nil, &MissingTagError{Tag: tag}
		}
		grouped[v] = t.Table
	}
	return grouped, nil
}
