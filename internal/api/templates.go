package api

import "html/template"

// Inline templates keep the binary self-contained; the interstitial is
// deliberately tiny so it renders fast on low-end mobile devices.

type interstitialData struct {
	Template    string
	ShortCode   string
	Countdown   int
	ContentType string
	ContentText string
	ContentImg  string
}

var interstitialTmpl = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Redirecting...</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 20px; text-align: center; }
        .ad { margin: 20px 0; padding: 20px; background: #f8f9fa; border-radius: 5px; }
        .ad img { max-width: 100%; }
        .continue { display: inline-block; margin-top: 20px; padding: 10px 20px; background: #007bff; color: white; text-decoration: none; border-radius: 4px; }
        .countdown { font-size: 24px; font-weight: bold; }
    </style>
</head>
<body class="{{.Template}}">
    <h2>Your link is almost ready</h2>
    <div class="ad" data-ad-type="{{.ContentType}}">
        <img src="{{.ContentImg}}" alt="">
        <p>{{.ContentText}}</p>
    </div>
    <p>Continue in <span class="countdown" id="countdown">{{.Countdown}}</span> seconds...</p>
    <a class="continue" id="continue" style="display:none" href="/{{.ShortCode}}">Continue</a>
    <script>
        var left = {{.Countdown}};
        var timer = setInterval(function () {
            left--;
            document.getElementById('countdown').textContent = left;
            if (left <= 0) {
                clearInterval(timer);
                document.getElementById('continue').style.display = 'inline-block';
            }
        }, 1000);
    </script>
</body>
</html>`))

type errorPageData struct {
	Title   string
	Message string
}

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 40px 20px; text-align: center; }
        h1 { color: #dc3545; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
</body>
</html>`))
