package tray

import "fyne.io/fyne/v2"

// svgContent is a headset outline with the right lens highlighted.
const svgContent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <!-- Headset body -->
  <rect x="1.5" y="4.5" width="13" height="7" rx="2.5" fill="none" stroke="#333333" stroke-width="1.2"/>

  <!-- Left lens -->
  <circle cx="5" cy="8" r="1.8" fill="none" stroke="#666666" stroke-width="0.9" opacity="0.6"/>

  <!-- Right lens, the captured eye -->
  <circle cx="11" cy="8" r="1.8" fill="#0078d4" stroke="#0078d4" stroke-width="0.9"/>

  <!-- Nose bridge -->
  <path d="M7 11.5 Q8 9.5 9 11.5" fill="none" stroke="#333333" stroke-width="1"/>
</svg>`

// Icon is the application and tray icon.
var Icon fyne.Resource = fyne.NewStaticResource("vr-dimension.svg", []byte(svgContent))
