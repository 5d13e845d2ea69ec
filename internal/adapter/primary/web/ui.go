package web

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Sound Scheduler</title>
    <style>
        body { font-family: sans-serif; max-width: 640px; margin: 50px auto; padding: 20px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
        .error { color: #b00020; min-height: 1.2em; }
        button { background: #007bff; color: white; border: none; padding: 10px 20px; border-radius: 5px; cursor: pointer; }
        button:hover { background: #0056b3; }
        button.stop { background: #6c757d; }
        input { padding: 8px; margin: 5px; }
        input#file { width: 360px; }
        label { display: inline-block; width: 110px; }
        pre { background: #111; color: #ddd; padding: 10px; height: 240px; overflow-y: auto; border-radius: 5px; }
    </style>
</head>
<body>
    <h1>Sound Scheduler</h1>
    <div class="info" id="status">Loading...</div>
    <div>
        <label>Audio file:</label>
        <input type="text" id="file" placeholder="/home/me/Music/chime.mp3">
    </div>
    <div>
        <label>Start (HH:MM):</label>
        <input type="time" id="start" value="09:00">
    </div>
    <div>
        <label>End (HH:MM):</label>
        <input type="time" id="end" value="17:00">
    </div>
    <div style="margin-top: 20px;">
        <button onclick="startScheduling()">Start Scheduling</button>
        <button class="stop" onclick="stopScheduling()">Stop Scheduling</button>
    </div>
    <p class="error" id="error"></p>
    <pre id="log"></pre>
    <script>
        function showStatus(data) {
            let status = data.running ? 'Scheduling: running' : 'Scheduling: stopped';
            if (data.running) {
                status += '<br>File: ' + data.filePath + '<br>Window: ' + data.start + ' - ' + data.end;
                status += '<br>Playback: ' + (data.playing ? (data.engineBusy ? 'playing' : 'restarting') : 'idle');
                if (data.restarts) {
                    status += ' (' + data.restarts + ' restarts)';
                }
            }
            document.getElementById('status').innerHTML = status;
        }

        async function loadStatus() {
            const res = await fetch('/api/status');
            showStatus(await res.json());
        }

        async function call(method, body) {
            const res = await fetch('/api/schedule', {
                method: method,
                headers: {'Content-Type': 'application/json'},
                body: body ? JSON.stringify(body) : undefined
            });
            const data = await res.json();
            if (!res.ok) {
                document.getElementById('error').textContent = data.kind + ': ' + data.error;
                return;
            }
            document.getElementById('error').textContent = '';
            showStatus(data);
        }

        function startScheduling() {
            call('POST', {
                filePath: document.getElementById('file').value,
                start: document.getElementById('start').value,
                end: document.getElementById('end').value
            });
        }

        function stopScheduling() {
            call('DELETE');
        }

        function appendLog(ev) {
            const log = document.getElementById('log');
            const t = new Date(ev.time).toLocaleTimeString([], {hour12: false});
            log.textContent += '[' + t + '] ' + ev.kind + ': ' + ev.message + '\n';
            log.scrollTop = log.scrollHeight;
        }

        function connect() {
            const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(proto + location.host + '/api/events/ws');
            ws.onopen = () => { document.getElementById('log').textContent = ''; };
            ws.onmessage = (msg) => { appendLog(JSON.parse(msg.data)); loadStatus(); };
            ws.onclose = () => setTimeout(connect, 3000);
        }

        loadStatus();
        connect();
        setInterval(loadStatus, 3000);
    </script>
</body>
</html>`
