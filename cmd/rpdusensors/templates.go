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

package main

const postPayload string = "`{\"host\": \"${host}\"}`"

const indexTmpl string = `<html>
  <head>
    <title>Rack PDU Sensors</title>
    <style>
      .links, .build-info {
        display: flex;
      }
      h3, p {
        padding-right: 1em;
      }
      label {
        display: inline-block;
        width: 75px;
      }
      form {
        margin: 10px;
      }
    </style>
  </head>
  <body>
    <h1>Rack PDU Sensors</h1>
    <div class="build-info">
      <p><b>build date:</b> {{ .Date }}</p>
      <p><b>revision:</b> {{ .GitRevision }}</p>
      <p><b>version:</b> {{ .GitVersion }}</p>
    </div>
    <div class="links">
      <h3><a href="ignored">Ignored Hosts</a></h3>
      <h3><a href="metrics">Metrics</a></h3>
      <h3><a href="verbosity">Verbosity</a></h3>
    </div>
    <form action="scrape">
      <label>Target:</label> <input type="text" name="target" placeholder="ip or fqdn[:port]">
      <input type="submit" value="Scrape">
    </form>
    <form action="discover">
      <label>Target:</label> <input type="text" name="target" placeholder="ip or fqdn[:port]">
      <input type="submit" value="Discover">
    </form>
    <form action="check">
      <label>Target:</label> <input type="text" name="target" placeholder="ip or fqdn[:port]">
      <label>Sensor:</label> <input type="text" name="item" placeholder="optional, i.e. Sensor1">
      <input type="submit" value="Check">
    </form>
  </body>
</html>
`

const ignoredTmpl string = `<html>
<head>
  <title>Rack PDU Sensors</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta http-equiv="refresh" content="60">
  <script src="https://ajax.googleapis.com/ajax/libs/jquery/3.6.0/jquery.min.js"></script>
  <style>
    .error-text {
      color: red;
      font-style: oblique;
    }
    h1 {
      padding: 1rem;
    }
    h3 {
      padding-left: 1rem;
    }
  </style>
</head>
<body>
  <h1>Ignored Hosts</h1>
  <h3><a href="../">Home</a></h3>
  <div>
    <ul>
      {{range .}}
      <li>{{.Name}} ({{.Reason}}, since {{.Since.Format "2006-01-02 15:04:05 MST"}})
        <button type="button" onclick="remove('{{ .Name }}')">Remove</button>
        <div style="display: inline" id="{{ .Name }}-error" class="error-text" hidden></div>
      </li>
      {{end}}
    </ul>
  </div>
<script>
  function remove(host) {
    const errorText = document.getElementById(host+"-error")

    $.post("ignored/remove", ` + postPayload + `, (data, status) => {
      if (status === "success") {
        location.reload();
      }
    }).fail((data) => {
      errorText.hidden = false;
      errorText.innerHTML = data.responseText;
    });
  }
</script>
</body>
</html>
`
