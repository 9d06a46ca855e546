package output

import (
	"fmt"
	"html/template"
	"io"
	"time"
)

type htmlReportData struct {
	Report      Report
	GeneratedAt string
	Protocols   []string
}

// GenerateHTMLReport writes a standalone HTML page for rep.
func GenerateHTMLReport(w io.Writer, rep Report) error {
	data := htmlReportData{
		Report:      rep,
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
		Protocols:   rep.Requests.ProtocolNames(),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.Round(time.Microsecond).String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"formatPercent": func(part, total int64) string {
			if total == 0 {
				return "0.0"
			}
			return fmt.Sprintf("%.1f", (float64(part)/float64(total))*100)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Granita Run Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #667eea;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.success {
            border-left-color: #10b981;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .card.warning {
            border-left-color: #f59e0b;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .badge {
            display: inline-block;
            padding: 4px 12px;
            border-radius: 12px;
            font-size: 0.85rem;
            font-weight: 600;
        }
        .badge-success {
            background: #d1fae5;
            color: #065f46;
        }
        .badge-skipped {
            background: #fef3c7;
            color: #92400e;
        }
        .badge-error {
            background: #fee2e2;
            color: #991b1b;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .no-data {
            text-align: center;
            padding: 40px;
            color: #6c757d;
            font-style: italic;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Granita Run Report</h1>
            <div class="meta">Run: {{.Report.RunID}}</div>
            <div class="meta">Generated: {{.GeneratedAt}} | Duration: {{formatDuration .Report.Requests.Duration}}</div>
        </header>

        <div class="content">
            <div class="grid">
                <div class="card {{if .Report.Passed}}success{{else}}error{{end}}">
                    <h3>Result</h3>
                    <div class="value">{{if .Report.Passed}}PASS{{else}}FAIL{{end}}</div>
                    {{if .Report.Error}}<div class="subvalue">{{.Report.Error}}</div>{{end}}
                </div>
                <div class="card">
                    <h3>Scenarios</h3>
                    <div class="value">{{.Report.Executed}}</div>
                    <div class="subvalue">{{.Report.Skipped}} skipped</div>
                </div>
                <div class="card">
                    <h3>Total Requests</h3>
                    <div class="value">{{.Report.Requests.Total}}</div>
                </div>
                <div class="card success">
                    <h3>Successful</h3>
                    <div class="value">{{.Report.Requests.Successes}}</div>
                    <div class="subvalue">{{formatPercent .Report.Requests.Successes .Report.Requests.Total}}%</div>
                </div>
                <div class="card error">
                    <h3>Failed</h3>
                    <div class="value">{{.Report.Requests.Failures}}</div>
                    <div class="subvalue">{{formatPercent .Report.Requests.Failures .Report.Requests.Total}}%</div>
                </div>
            </div>

            <div class="section">
                <h2>Scenarios</h2>
                <table>
                    <thead>
                        <tr>
                            <th>#</th>
                            <th>Name</th>
                            <th>Status</th>
                            <th>Duration</th>
                            <th>Error</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Scenarios}}
                        <tr>
                            <td>{{.Index}}</td>
                            <td><strong>{{.Name}}</strong></td>
                            <td>
                                {{if eq .Status "passed"}}
                                <span class="badge badge-success">PASS</span>
                                {{else if eq .Status "failed"}}
                                <span class="badge badge-error">FAIL</span>
                                {{else}}
                                <span class="badge badge-skipped">SKIPPED</span>
                                {{end}}
                            </td>
                            <td>{{if ne .Status "skipped"}}{{formatDuration .Duration}}{{else}}-{{end}}</td>
                            <td>{{if .Error}}{{.ErrorType}}: {{.Error}}{{end}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>

            {{if .Report.Requests.Total}}
            <div class="section">
                <h2>Latency Statistics</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatDuration .Report.Requests.MinLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatDuration .Report.Requests.MaxLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Mean</div>
                        <div class="value">{{formatDuration .Report.Requests.MeanLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P50</div>
                        <div class="value">{{formatDuration .Report.Requests.P50Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatDuration .Report.Requests.P90Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P95</div>
                        <div class="value">{{formatDuration .Report.Requests.P95Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatDuration .Report.Requests.P99Latency}}</div>
                    </div>
                </div>
            </div>
            {{else}}
            <div class="no-data">No requests were sent.</div>
            {{end}}

            {{if .Protocols}}
            <div class="section">
                <h2>Protocol Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Protocol</th>
                            <th>Total</th>
                            <th>Success</th>
                            <th>Failed</th>
                            <th>P99 Latency</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Protocols}}
                        {{$p := index $.Report.Requests.Protocols .}}
                        <tr>
                            <td><strong>{{.}}</strong></td>
                            <td>{{$p.Total}}</td>
                            <td>{{$p.Successes}}</td>
                            <td>{{$p.Failures}}</td>
                            <td>{{formatDuration $p.P99Latency}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            {{if .Report.Thresholds}}
            <div class="section">
                <h2>Thresholds</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Threshold</th>
                            <th>Actual</th>
                            <th>Status</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Thresholds}}
                        <tr>
                            <td><code>{{.Raw}}</code></td>
                            <td>{{printf "%.2f" .Actual}}</td>
                            <td>{{if .Pass}}<span class="badge badge-success">PASS</span>{{else}}<span class="badge badge-error">FAIL</span>{{end}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>
</body>
</html>
`
