package dashboard

const dashboardHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>Transaction Risk Intelligence - Fraud Dashboard</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
        .container { max-width: 1400px; margin: 0 auto; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; margin-bottom: 20px; }
        .header h1 { margin: 0; font-size: 2.2em; text-align: center; }
        .status-bar { display: flex; justify-content: space-between; align-items: center; background: white; padding: 15px; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .status-indicator { display: flex; align-items: center; font-weight: bold; }
        .status-dot { width: 12px; height: 12px; border-radius: 50%; margin-right: 8px; }
        .status-active { background-color: #28a745; }
        .status-danger { background-color: #dc3545; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 20px; }
        .card { background: white; border-radius: 10px; padding: 20px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .card h3 { margin-top: 0; color: #333; border-bottom: 2px solid #eee; padding-bottom: 10px; }
        .metric { display: flex; justify-content: space-between; align-items: center; padding: 8px 0; border-bottom: 1px solid #eee; }
        .metric:last-child { border-bottom: none; }
        .metric-label { font-weight: 500; color: #666; }
        .metric-value { font-weight: bold; color: #333; }
        .metric-positive { color: #28a745; }
        .metric-negative { color: #dc3545; }
        .metric-warning { color: #ffc107; }
        .large-metric { font-size: 1.8em; text-align: center; margin: 10px 0; }
        .band-bar { display: flex; height: 24px; border-radius: 6px; overflow: hidden; margin: 10px 0; }
        .band-low { background-color: #28a745; }
        .band-medium { background-color: #ffc107; }
        .band-high { background-color: #dc3545; }
        .history-table { width: 100%; border-collapse: collapse; margin-top: 10px; font-size: 0.9em; }
        .history-table th, .history-table td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eee; }
        .history-table th { background-color: #f8f9fa; font-weight: 600; }
        .analyze-form input { width: 100%; box-sizing: border-box; margin: 4px 0; padding: 8px; border: 1px solid #ccc; border-radius: 4px; }
        .analyze-form button { width: 100%; margin-top: 10px; padding: 10px; background: #667eea; color: white; border: none; border-radius: 6px; font-weight: bold; cursor: pointer; }
        .analyze-form button:hover { background: #5a6fd6; }
        .contribution { display: flex; justify-content: space-between; padding: 4px 0; font-size: 0.9em; }
        .badge { padding: 2px 8px; border-radius: 4px; font-size: 0.8em; font-weight: bold; color: white; }
        .badge-low { background-color: #28a745; }
        .badge-medium { background-color: #ffc107; color: #333; }
        .badge-high { background-color: #dc3545; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Transaction Risk Intelligence Dashboard</h1>
        </div>

        <div class="status-bar">
            <div class="status-indicator">
                <div class="status-dot" id="model-status"></div>
                <span id="model-status-text">Checking model...</span>
            </div>
            <div class="status-indicator">
                <span id="last-update">Last Updated: --</span>
            </div>
        </div>

        <div class="grid">
            <div class="card">
                <h3>Scoring Overview</h3>
                <div class="large-metric"><span id="total-predictions">0</span></div>
                <div class="metric">
                    <span class="metric-label">Flagged as Fraud</span>
                    <span class="metric-value" id="fraud-flagged">0</span>
                </div>
                <div class="metric">
                    <span class="metric-label">Fraud Rate</span>
                    <span class="metric-value" id="fraud-rate">0.00%</span>
                </div>
                <div class="metric">
                    <span class="metric-label">Average Risk Score</span>
                    <span class="metric-value" id="avg-risk-score">0.000</span>
                </div>
            </div>

            <div class="card">
                <h3>Risk Band Distribution</h3>
                <div class="band-bar">
                    <div class="band-low" id="band-bar-low" style="width: 33%"></div>
                    <div class="band-medium" id="band-bar-medium" style="width: 34%"></div>
                    <div class="band-high" id="band-bar-high" style="width: 33%"></div>
                </div>
                <div class="metric">
                    <span class="metric-label">Low Risk</span>
                    <span class="metric-value metric-positive" id="band-low-count">0</span>
                </div>
                <div class="metric">
                    <span class="metric-label">Medium Risk</span>
                    <span class="metric-value metric-warning" id="band-medium-count">0</span>
                </div>
                <div class="metric">
                    <span class="metric-label">High Risk</span>
                    <span class="metric-value metric-negative" id="band-high-count">0</span>
                </div>
            </div>

            <div class="card">
                <h3>Analyze a Transaction</h3>
                <form class="analyze-form" id="analyze-form">
                    <input type="number" step="any" id="f-amount" placeholder="Transaction amount" required>
                    <input type="text" id="f-customer" placeholder="Customer ID (optional)">
                    <input type="text" id="f-foreign" placeholder="Foreign transaction? yes/no">
                    <input type="text" id="f-highrisk" placeholder="High risk country? yes/no">
                    <input type="text" id="f-prevfraud" placeholder="Previous fraud flag? yes/no">
                    <button type="submit">Analyze</button>
                </form>
                <div id="analyze-result" style="margin-top: 12px;"></div>
            </div>

            <div class="card">
                <h3>Recent Predictions</h3>
                <table class="history-table">
                    <thead>
                        <tr><th>Time</th><th>Customer</th><th>Amount</th><th>Score</th><th>Band</th></tr>
                    </thead>
                    <tbody id="history-body">
                        <tr><td colspan="5" style="text-align: center; color: #666;">No predictions yet</td></tr>
                    </tbody>
                </table>
            </div>
        </div>
    </div>

    <script>
        const ws = new WebSocket('ws://' + location.host + '/ws');

        ws.onmessage = function(event) {
            updateDashboard(JSON.parse(event.data));
        };

        ws.onclose = function() {
            setTimeout(() => location.reload(), 5000);
        };

        function bandBadge(band) {
            if (band === 'High Risk') return '<span class="badge badge-high">High</span>';
            if (band === 'Medium Risk') return '<span class="badge badge-medium">Medium</span>';
            return '<span class="badge badge-low">Low</span>';
        }

        function updateDashboard(data) {
            document.getElementById('last-update').textContent = 'Last Updated: ' + new Date(data.timestamp).toLocaleTimeString();

            const statusDot = document.getElementById('model-status');
            const statusText = document.getElementById('model-status-text');
            if (data.modelLoaded) {
                statusDot.className = 'status-dot status-active';
                statusText.textContent = 'Model ' + data.modelVersion + ' loaded';
            } else {
                statusDot.className = 'status-dot status-danger';
                statusText.textContent = 'Model unavailable';
            }

            document.getElementById('total-predictions').textContent = data.totalPredictions;
            document.getElementById('fraud-flagged').textContent = data.fraudFlagged;
            document.getElementById('fraud-rate').textContent = (data.fraudRate * 100).toFixed(2) + '%';
            document.getElementById('avg-risk-score').textContent = data.avgRiskScore.toFixed(3);

            const low = data.bandCounts['Low Risk'] || 0;
            const medium = data.bandCounts['Medium Risk'] || 0;
            const high = data.bandCounts['High Risk'] || 0;
            const total = Math.max(low + medium + high, 1);
            document.getElementById('band-low-count').textContent = low;
            document.getElementById('band-medium-count').textContent = medium;
            document.getElementById('band-high-count').textContent = high;
            document.getElementById('band-bar-low').style.width = (low / total * 100) + '%';
            document.getElementById('band-bar-medium').style.width = (medium / total * 100) + '%';
            document.getElementById('band-bar-high').style.width = (high / total * 100) + '%';

            const tbody = document.getElementById('history-body');
            if (!data.recent || data.recent.length === 0) {
                tbody.innerHTML = '<tr><td colspan="5" style="text-align: center; color: #666;">No predictions yet</td></tr>';
                return;
            }
            tbody.innerHTML = '';
            for (const rec of data.recent) {
                const row = document.createElement('tr');
                row.innerHTML =
                    '<td>' + new Date(rec.timestamp).toLocaleTimeString() + '</td>' +
                    '<td>' + (rec.customer_id || '-') + '</td>' +
                    '<td>' + rec.amount.toFixed(2) + '</td>' +
                    '<td>' + rec.risk_score.toFixed(3) + '</td>' +
                    '<td>' + bandBadge(rec.risk_level) + '</td>';
                tbody.appendChild(row);
            }
        }

        document.getElementById('analyze-form').addEventListener('submit', async function(e) {
            e.preventDefault();
            const payload = { transaction_amount: parseFloat(document.getElementById('f-amount').value) };
            const customer = document.getElementById('f-customer').value;
            if (customer) payload.customer_id = customer;
            for (const [id, key] of [['f-foreign', 'is_foreign_transaction'], ['f-highrisk', 'is_high_risk_country'], ['f-prevfraud', 'previous_fraud_flag']]) {
                const v = document.getElementById(id).value;
                if (v) payload[key] = v;
            }

            const result = document.getElementById('analyze-result');
            result.innerHTML = 'Analyzing...';
            try {
                const resp = await fetch('/api/analyze', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify(payload)
                });
                const data = await resp.json();
                if (data.status !== 'success') {
                    result.innerHTML = '<span class="metric-negative">' + (data.detail || 'analysis failed') + '</span>';
                    return;
                }
                let html = '<div class="metric"><span class="metric-label">Risk Score</span><span class="metric-value">' + data.probability.toFixed(3) + '</span></div>';
                html += '<div class="metric"><span class="metric-label">Band</span><span>' + bandBadge(data.explanation.risk_level) + '</span></div>';
                html += '<div class="metric"><span class="metric-label">Fraudulent</span><span class="metric-value ' + (data.prediction === 1 ? 'metric-negative' : 'metric-positive') + '">' + (data.prediction === 1 ? 'YES' : 'NO') + '</span></div>';
                if (data.attributions && data.attributions.length > 0) {
                    html += '<h3 style="margin-top: 12px;">Feature Contributions</h3>';
                    for (const c of data.attributions) {
                        html += '<div class="contribution"><span>' + c.feature + '</span><span class="' + (c.value >= 0 ? 'metric-negative' : 'metric-positive') + '">' + c.value.toFixed(4) + '</span></div>';
                    }
                }
                if (data.attribution_note) {
                    html += '<div style="color: #666; font-size: 0.85em; margin-top: 6px;">' + data.attribution_note + '</div>';
                }
                result.innerHTML = html;
            } catch (err) {
                result.innerHTML = '<span class="metric-negative">request failed</span>';
            }
        });
    </script>
</body>
</html>
`
