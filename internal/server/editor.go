package server

// editorHTML is the browser editor served at /. It posts the descriptor in
// the textarea to /render and shows the returned PNG.
const editorHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>flambeau</title>
<style>
  body { font-family: monospace; margin: 0; display: flex; height: 100vh; background: #111; color: #ddd; }
  #left { width: 40%; display: flex; flex-direction: column; padding: 1rem; gap: 0.5rem; }
  #descriptor { flex: 1; background: #1a1a1a; color: #ddd; border: 1px solid #333; padding: 0.5rem; resize: none; }
  #right { flex: 1; display: flex; align-items: center; justify-content: center; }
  #preview { max-width: 100%; max-height: 100%; image-rendering: pixelated; }
  #controls { display: flex; gap: 0.5rem; align-items: center; flex-wrap: wrap; }
  input { width: 6rem; background: #1a1a1a; color: #ddd; border: 1px solid #333; padding: 0.25rem; }
  button { background: #2a6; color: #111; border: none; padding: 0.5rem 1rem; cursor: pointer; }
  #status { color: #888; }
</style>
</head>
<body>
<div id="left">
  <div id="controls">
    <label>iters <input id="iters" value="5000000"></label>
    <label>size <input id="size" value="500"></label>
    <button id="render">render</button>
    <span id="status"></span>
  </div>
  <textarea id="descriptor" spellcheck="false">{
  "functions": [
    {"weight": 1, "variation": "sinusoidal", "pre": [0.5, 0, 0, 0.5, 0.5, 0.5], "color": 0},
    {"weight": 1, "variation": "sinusoidal", "pre": [0.5, 0, 0, 0.5, -0.5, 0.5], "color": 0.5},
    {"weight": 1, "variation": "sinusoidal", "pre": [0.5, 0, 0, 0.5, 0, -0.5], "color": 1}
  ],
  "palette": {"colors": [[255, 120, 40], [40, 120, 255]]}
}</textarea>
</div>
<div id="right"><img id="preview" alt=""></div>
<script>
const status = document.getElementById('status');
document.getElementById('render').addEventListener('click', async () => {
  const size = document.getElementById('size').value;
  const iters = document.getElementById('iters').value;
  status.textContent = 'rendering…';
  try {
    const resp = await fetch('/render?width=' + size + '&height=' + size + '&iters=' + iters, {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: document.getElementById('descriptor').value
    });
    if (!resp.ok) {
      status.textContent = await resp.text();
      return;
    }
    document.getElementById('preview').src = URL.createObjectURL(await resp.blob());
    status.textContent = 'job ' + resp.headers.get('X-Render-Job');
  } catch (err) {
    status.textContent = err;
  }
});
</script>
</body>
</html>
`
