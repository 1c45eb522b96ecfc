package web

// Dashboard page: live price chart, order form, wallet and transaction list.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>GLDC Desk</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    :root { --bg:#0e0d0b; --ink:#f2ead9; --gold:#d4af37; --panel:#1a1813; --soft:#8a8270; }
    * { box-sizing:border-box; }
    body { margin:0; padding:2rem; background:var(--bg); color:var(--ink); font-family:'Space Mono',monospace; }
    #app { max-width:1100px; margin:0 auto; display:grid; grid-template-columns:1fr 340px; gap:1.5rem; }
    .panel { background:var(--panel); border:1px solid var(--gold); padding:1.25rem; }
    h1 { font-size:1.1rem; color:var(--gold); margin:0 0 1rem; }
    .price { font-size:2rem; color:var(--gold); }
    .muted { color:var(--soft); font-size:.8rem; }
    .warn { color:#e06c5a; font-size:.8rem; }
    input, select, button { width:100%; margin:.25rem 0; padding:.5rem; background:var(--bg); color:var(--ink); border:1px solid var(--soft); font-family:inherit; }
    button { border-color:var(--gold); color:var(--gold); cursor:pointer; }
    table { width:100%; border-collapse:collapse; font-size:.8rem; }
    td, th { padding:.35rem; border-bottom:1px solid #2a2720; text-align:left; }
    .pending { color:#e0b35a; } .completed { color:#7ac47a; }
  </style>
</head>
<body>
<div id="app">
  <div class="panel">
    <h1>GLDC / gram of gold</h1>
    <div class="price" id="unit">—</div>
    <div class="muted" id="spot"></div>
    <div class="warn" id="condition"></div>
    <canvas id="chart" height="120"></canvas>
    <p class="muted" id="insight"></p>
    <button onclick="fetch('/api/refresh',{method:'POST'})">Refresh now</button>
  </div>
  <div>
    <div class="panel">
      <h1>Trade</h1>
      <select id="side"><option value="buy">Buy</option><option value="sell">Sell</option></select>
      <input id="qty" placeholder="Quantity (GLDC)" oninput="requote()" />
      <div class="muted" id="quote"></div>
      <button onclick="submitOrder()">Place order</button>
      <div class="muted" id="orderMsg"></div>
    </div>
    <div class="panel" style="margin-top:1.5rem">
      <h1>Wallet</h1>
      <div class="muted" id="wallet">not connected</div>
      <button onclick="connectWallet()">Connect wallet</button>
    </div>
    <div class="panel" style="margin-top:1.5rem">
      <h1>Transactions</h1>
      <table id="txs"></table>
    </div>
  </div>
</div>
<script>
let chart = new Chart(document.getElementById('chart'), {
  type:'line',
  data:{labels:[],datasets:[{data:[],borderColor:'#d4af37',tension:.3,pointRadius:0}]},
  options:{plugins:{legend:{display:false}},scales:{x:{ticks:{color:'#8a8270'}},y:{ticks:{color:'#8a8270'}}}}
});
const ws = new WebSocket((location.protocol==='https:'?'wss://':'ws://')+location.host+'/ws');
ws.onmessage = (e) => {
  const u = JSON.parse(e.data);
  if (u.condition === 'connection_error') {
    document.getElementById('condition').textContent = 'Market connection error';
    return;
  }
  document.getElementById('unit').textContent = '$'+Number(u.snapshot.unit).toFixed(2);
  document.getElementById('spot').textContent = 'spot $'+Number(u.snapshot.spot).toFixed(2)+'/ozt'+(u.degraded?' (stale fallback)':'');
  document.getElementById('condition').textContent = u.condition==='quota_exhausted'?'Insight quota exhausted — provide a different API key':'';
  document.getElementById('insight').textContent = u.insight;
  chart.data.labels = u.history.map(p=>p.label);
  chart.data.datasets[0].data = u.history.map(p=>Number(p.value));
  chart.update();
  loadTxs(); loadWallet();
};
async function requote() {
  const side = document.getElementById('side').value, qty = document.getElementById('qty').value;
  const r = await fetch('/api/quote?side='+side+'&quantity='+encodeURIComponent(qty));
  if (!r.ok) return;
  const q = await r.json();
  document.getElementById('quote').textContent =
    'subtotal $'+Number(q.subtotal).toFixed(2)+' · fee $'+Number(q.fee).toFixed(2)+' · total $'+Number(q.total).toFixed(2);
}
async function submitOrder() {
  const side = document.getElementById('side').value, qty = document.getElementById('qty').value;
  const r = await fetch('/api/orders',{method:'POST',headers:{'Content-Type':'application/json'},
    body:JSON.stringify({side:side,quantity:qty})});
  const msg = document.getElementById('orderMsg');
  if (!r.ok) { msg.textContent = await r.text(); return; }
  const o = await r.json();
  msg.textContent = 'Order '+o.transaction.id.slice(0,8)+' pending settlement';
  if (o.mailto_link) window.location.href = o.mailto_link;
  loadTxs();
}
async function connectWallet() { await fetch('/api/wallet/connect',{method:'POST'}); loadWallet(); }
async function loadWallet() {
  const w = await (await fetch('/api/wallet')).json();
  document.getElementById('wallet').textContent = w.connected
    ? w.address.slice(0,10)+'… · '+Number(w.tokens).toFixed(4)+' GLDC · $'+Number(w.usd).toFixed(2)
    : 'not connected';
}
async function loadTxs() {
  const txs = await (await fetch('/api/orders')).json();
  document.getElementById('txs').innerHTML =
    '<tr><th>side</th><th>qty</th><th>total</th><th>status</th></tr>' +
    txs.map(t=>'<tr><td>'+t.side+'</td><td>'+Number(t.quantity).toFixed(4)+'</td><td>$'+
      Number(t.total).toFixed(2)+'</td><td class="'+t.status+'">'+t.status+'</td></tr>').join('');
}
loadWallet(); loadTxs();
</script>
</body>
</html>`
