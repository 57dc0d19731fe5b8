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

/*
Package influxframe provides a client for InfluxDB that returns query results as typed,
time-indexed tables.

# Client

Use NewClient to create a client struct. This is the major entrance to construct structs for interacting with InfluxDB:

	client := influxframe.NewClient(&influxframe.Config{
		URL:      "http://<influxdb-host>:8086",
		Database: "telegraf",
	})
	defer client.Close()

# Query Data with InfluxQL

Create an InfluxQL statement and execute it. Every statement of the query yields a StatementResult
holding one DataFrame per series, or the error of that statement alone:

	q := influxframe.NewInfluxQLQuery("indoor_environment").
		Field("temperature").
		GroupBy("room").
		Build()
	frames, err := client.InfluxQL(q).DataFramesByTag(ctx, "room")
	if err != nil {
		return err
	}
	fmt.Println(frames["bedroom"])

Use FetchInfluxQL with NewArrowFactory, or any other TableFactory, to build other table types.

# Query Data with Flux

	q := influxframe.NewFluxQuery("telegraf/autogen").
		RangeStart(influxframe.Relative(influxframe.NewDuration(-15, influxframe.Minutes))).
		Filter(`r._measurement == "cpu"`).
		Build()
	results, err := client.Flux(q).Execute(ctx)

# Write Data

Write lines directly, or through a LineCable that batches them in the background:

	cable := client.LineCable()
	cable.Start(ctx)
	defer cable.Close()

	errCh := cable.Send(influxframe.NewLine("indoor_environment").
		AddTag("room", "bedroom").
		AddField("temperature", influxframe.FloatValue(21.5)))
*/
package influxframe
