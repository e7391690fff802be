package fixtureapp

import (
	"fmt"
	"net/http"
)

func (a *App) serveLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, loginPageHTML, a.revealDelay.Milliseconds())
}

func (a *App) serveInventoryPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, inventoryPageHTML)
}

func (a *App) serveDialogPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, dialogPageHTML)
}

func (a *App) serveFramePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, framePageHTML)
}

func (a *App) serveDragPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, dragPageHTML)
}

func (a *App) serveSlowPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, slowPageHTML, a.revealDelay.Milliseconds())
}

// The banner is revealed after a delay (%d ms) so tests must actually
// wait for it instead of reading the DOM immediately after submit.
const loginPageHTML = `<!DOCTYPE html>
<html>
<head><title>Swag Labs</title>
<style>
  .error-message-container { display: none; }
  .error-message-container.visible { display: block; color: #e2231a; }
</style>
</head>
<body>
  <div class="login_logo">Swag Labs</div>
  <div class="login_wrapper">
    <form id="login-form">
      <input type="text" id="user-name" name="user-name" placeholder="Username" autocomplete="off">
      <input type="password" id="password" name="password" placeholder="Password" autocomplete="off">
      <input type="submit" id="login-button" name="login-button" value="Login">
    </form>
    <div class="error-message-container">
      <h3 data-test="error">
        <span class="error-text"></span>
        <button class="error-button" type="button">&times;</button>
      </h3>
    </div>
  </div>
  <script>
    const revealDelay = %d;
    const container = document.querySelector('.error-message-container');
    const errorText = document.querySelector('.error-text');

    document.querySelector('.error-button').addEventListener('click', () => {
      container.classList.remove('visible');
      errorText.textContent = '';
    });

    document.getElementById('login-form').addEventListener('submit', async (ev) => {
      ev.preventDefault();
      container.classList.remove('visible');
      const body = JSON.stringify({
        username: document.getElementById('user-name').value,
        password: document.getElementById('password').value,
      });
      const resp = await fetch('/api/login', {method: 'POST', headers: {'Content-Type': 'application/json'}, body});
      const data = await resp.json();
      if (data.ok) {
        window.location.href = '/inventory.html';
        return;
      }
      setTimeout(() => {
        errorText.textContent = data.error;
        container.classList.add('visible');
      }, revealDelay);
    });
  </script>
</body>
</html>`

const inventoryPageHTML = `<!DOCTYPE html>
<html>
<head><title>Swag Labs</title></head>
<body>
  <div id="inventory_container">
    <span class="title">Products</span>
    <div class="inventory_list">
      <div class="inventory_item"><div class="inventory_item_name">Backpack</div></div>
      <div class="inventory_item"><div class="inventory_item_name">Bike Light</div></div>
      <div class="inventory_item"><div class="inventory_item_name">Bolt T-Shirt</div></div>
    </div>
  </div>
</body>
</html>`

const dialogPageHTML = `<!DOCTYPE html>
<html>
<head><title>Dialogs</title></head>
<body>
  <button id="confirm-delete">Delete item</button>
  <div id="dialog-result">pending</div>
  <script>
    document.getElementById('confirm-delete').addEventListener('click', () => {
      const ok = confirm('Delete this item?');
      document.getElementById('dialog-result').textContent = ok ? 'deleted' : 'kept';
    });
  </script>
</body>
</html>`

const framePageHTML = `<!DOCTYPE html>
<html>
<head><title>Frame Host</title></head>
<body>
  <h1 id="outer-title">Frame host</h1>
  <iframe id="content-frame" src="/inventory.html" width="640" height="480"></iframe>
</body>
</html>`

// The drag box reacts to plain mouse events, not the HTML5 drag API,
// so synthesized pointer input can move it.
const dragPageHTML = `<!DOCTYPE html>
<html>
<head><title>Drag Target</title>
<style>
  #drag-source { width: 80px; height: 80px; background: #cde; position: absolute; left: 20px; top: 80px; }
  #drop-zone { width: 200px; height: 200px; border: 2px dashed #888; position: absolute; left: 300px; top: 40px; }
</style>
</head>
<body>
  <div id="drag-status">idle</div>
  <div id="drag-source">Drag me</div>
  <div id="drop-zone"></div>
  <script>
    let dragging = false;
    const status = document.getElementById('drag-status');
    const zone = document.getElementById('drop-zone');
    document.getElementById('drag-source').addEventListener('mousedown', () => {
      dragging = true;
      status.textContent = 'dragging';
    });
    document.addEventListener('mouseup', (ev) => {
      if (!dragging) return;
      dragging = false;
      const r = zone.getBoundingClientRect();
      const inside = ev.clientX >= r.left && ev.clientX <= r.right &&
        ev.clientY >= r.top && ev.clientY <= r.bottom;
      status.textContent = inside ? 'dropped' : 'idle';
    });
  </script>
</body>
</html>`

// Content appears only after the websocket feed completes, so tests
// against this page must poll rather than assert immediately.
const slowPageHTML = `<!DOCTYPE html>
<html>
<head><title>Slow Feed</title>
<style>#late-content { display: none; }</style>
</head>
<body>
  <div id="feed-status">connecting</div>
  <div id="late-content">feed complete</div>
  <script>
    const revealDelay = %d;
    const ws = new WebSocket('ws://' + window.location.host + '/ws');
    const status = document.getElementById('feed-status');
    ws.onmessage = (ev) => {
      const msg = JSON.parse(ev.data);
      if (msg.event === 'done') {
        setTimeout(() => {
          status.textContent = 'done';
          document.getElementById('late-content').style.display = 'block';
        }, revealDelay);
      } else {
        status.textContent = 'tick ' + msg.seq;
      }
    };
  </script>
</body>
</html>`
