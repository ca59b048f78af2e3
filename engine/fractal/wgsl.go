package fractal

// WGSL source fragments contributed by the builtin features. Every fragment is
// a complete set of function definitions; the composer only concatenates, so
// each string must parse on its own once the shared uniform struct is in scope.

const wgslFormulaSource = `var<private> orbit_trap: f32 = 1e10;

fn de_mandelbulb(p: vec3<f32>) -> f32 {
    var z = p;
    var dr = 1.0;
    var r = 0.0;
    orbit_trap = 1e10;
    for (var i = 0; i < FRACTAL_ITERATIONS; i = i + 1) {
        r = length(z);
        if (r > params.uBailout) {
            break;
        }
        let theta = acos(z.z / r) * params.uPower;
        let phi = atan2(z.y, z.x) * params.uPower;
        dr = pow(r, params.uPower - 1.0) * params.uPower * dr + 1.0;
        let zr = pow(r, params.uPower);
        z = zr * vec3<f32>(sin(theta) * cos(phi), sin(theta) * sin(phi), cos(theta)) + p;
        orbit_trap = min(orbit_trap, length(z));
    }
    return 0.5 * log(r) * r / dr;
}

fn de_julia(p: vec3<f32>) -> f32 {
    var z = p;
    var dr = 1.0;
    var r = 0.0;
    orbit_trap = 1e10;
    for (var i = 0; i < FRACTAL_ITERATIONS; i = i + 1) {
        r = length(z);
        if (r > params.uBailout) {
            break;
        }
        let theta = acos(z.z / r) * params.uPower;
        let phi = atan2(z.y, z.x) * params.uPower;
        dr = pow(r, params.uPower - 1.0) * params.uPower * dr;
        let zr = pow(r, params.uPower);
        z = zr * vec3<f32>(sin(theta) * cos(phi), sin(theta) * sin(phi), cos(theta)) + params.uJuliaC;
        orbit_trap = min(orbit_trap, length(z));
    }
    return 0.5 * log(r) * r / dr;
}

fn de_mandelbox(p: vec3<f32>) -> f32 {
    let scale = params.uBoxScale;
    var z = p;
    var dr = 1.0;
    orbit_trap = 1e10;
    for (var i = 0; i < FRACTAL_ITERATIONS; i = i + 1) {
        z = clamp(z, vec3<f32>(-1.0), vec3<f32>(1.0)) * 2.0 - z;
        let r2 = dot(z, z);
        if (r2 < 0.25) {
            z = z * 4.0;
            dr = dr * 4.0;
        } else if (r2 < 1.0) {
            z = z / r2;
            dr = dr / r2;
        }
        z = z * scale + p;
        dr = dr * abs(scale) + 1.0;
        orbit_trap = min(orbit_trap, r2);
        if (length(z) > params.uBailout * 4.0) {
            break;
        }
    }
    return length(z) / abs(dr);
}

fn formula_de(p: vec3<f32>) -> f32 {
    if (FORMULA_ID == 1) {
        return de_julia(p);
    }
    if (FORMULA_ID == 2) {
        return de_mandelbox(p);
    }
    return de_mandelbulb(p);
}
`

const wgslMarchSource = `struct MarchResult {
    dist: f32,
    steps: i32,
    hit: bool,
}

fn march(ro: vec3<f32>, rd: vec3<f32>) -> MarchResult {
    var res: MarchResult;
    res.hit = false;
    var t = 0.0;
    for (var i = 0; i < MAX_MARCH_STEPS; i = i + 1) {
        res.steps = i;
        let d = formula_de(ro + rd * t);
        if (d < params.uDetail * max(t, 1.0)) {
            res.hit = true;
            break;
        }
        t = t + d;
        if (t > params.uMaxDistance) {
            break;
        }
    }
    res.dist = t;
    return res;
}

fn estimate_normal(p: vec3<f32>) -> vec3<f32> {
    let e = max(params.uDetail * 0.5, 1e-5);
    return normalize(vec3<f32>(
        formula_de(p + vec3<f32>(e, 0.0, 0.0)) - formula_de(p - vec3<f32>(e, 0.0, 0.0)),
        formula_de(p + vec3<f32>(0.0, e, 0.0)) - formula_de(p - vec3<f32>(0.0, e, 0.0)),
        formula_de(p + vec3<f32>(0.0, 0.0, e)) - formula_de(p - vec3<f32>(0.0, 0.0, e)),
    ));
}

fn camera_ray(uv: vec2<f32>) -> vec3<f32> {
    let res = params.uResolution;
    let sub = params.uTileOrigin + uv * params.uTileScale;
    let jittered = (sub * res + params.uJitter) / res;
    let ndc = jittered * 2.0 - vec2<f32>(1.0);
    let half_fov = tan(params.uFov * 0.5);
    let aspect = res.x / res.y;
    return normalize(params.uCameraForward
        + ndc.x * aspect * half_fov * params.uCameraRight
        + ndc.y * half_fov * params.uCameraUp);
}
`

// The main entry's alpha is the running-average blend weight 1/(n+1), so an
// accumulating pass with over-blending converges to the mean of all samples.
// Under PATH_TRACING each frame multiplies in one stochastic occlusion sample;
// the running average converges to the hemisphere integral.
const wgslMainEntrySource = `@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let weight = 1.0 / (f32(params.uSampleIndex) + 1.0);
    let ro = params.uCameraPos;
    let rd = camera_ray(in.uv);
    let m = march(ro, rd);
    if (!m.hit) {
        let sky = mix(vec3<f32>(0.03, 0.03, 0.06), vec3<f32>(0.0), in.uv.y);
        return vec4<f32>(apply_fog(sky, params.uMaxDistance), weight);
    }
    let p = ro + rd * m.dist;
    let n = estimate_normal(p);
    let base = palette_color(fract(orbit_trap * params.uColorScale + params.uColorOffset));
    var col = shade(p, n, rd, base);
    if (PATH_TRACING == 1) {
        let seed = in.uv * 127.1 + f32(params.uSampleIndex) * vec2<f32>(0.754877, 0.569840);
        col = col * ambient_occlusion(p, n, seed);
    }
    col = apply_fog(col, m.dist);
    return vec4<f32>(col, weight);
}
`

// The physics entry writes raw distance into the red channel; a miss writes
// the 1000.0 sentinel that readers treat as "no surface hit".
const wgslPhysicsEntrySource = `@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let rd = camera_ray(in.uv);
    let m = march(params.uCameraPos, rd);
    var d = m.dist;
    if (!m.hit) {
        d = 1000.0;
    }
    return vec4<f32>(d, 0.0, 0.0, 1.0);
}
`

const wgslHistogramEntrySource = `@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let rd = camera_ray(in.uv);
    let m = march(params.uCameraPos, rd);
    let density = f32(m.steps) / f32(MAX_MARCH_STEPS);
    return vec4<f32>(density, select(0.0, 1.0, m.hit), 0.0, 1.0);
}
`

const wgslLightingSource = `fn shade(p: vec3<f32>, n: vec3<f32>, rd: vec3<f32>, base: vec3<f32>) -> vec3<f32> {
    var col = base * params.uAmbient;
    for (var i = 0; i < LIGHT_COUNT; i = i + 1) {
        let lp = params.uLightPositions[i].xyz;
        let lc = params.uLightColors[i];
        let lv = lp - p;
        let dist = max(length(lv), 1e-6);
        let ldir = lv / dist;
        let diffuse = max(dot(n, ldir), 0.0);
        if (diffuse <= 0.0) {
            continue;
        }
        let shadow = soft_shadow(p + n * params.uDetail * 4.0, ldir, dist);
        let h = normalize(ldir - rd);
        let specular = pow(max(dot(n, h), 0.0), 32.0) * 0.3;
        let atten = lc.a / (1.0 + 0.1 * dist * dist);
        col = col + (base * diffuse + vec3<f32>(specular)) * lc.rgb * atten * shadow;
    }
    return col;
}
`

const wgslAmbientOcclusionSource = `fn pt_rand(seed: vec2<f32>) -> f32 {
    return fract(sin(dot(seed, vec2<f32>(12.9898, 78.233))) * 43758.5453);
}

fn ambient_occlusion(p: vec3<f32>, n: vec3<f32>, seed: vec2<f32>) -> f32 {
    let a = pt_rand(seed) * 6.2831853;
    let z = pt_rand(seed + vec2<f32>(1.0, 0.0)) * 2.0 - 1.0;
    let r = sqrt(max(1.0 - z * z, 0.0));
    var dir = vec3<f32>(r * cos(a), r * sin(a), z);
    if (dot(dir, n) < 0.0) {
        dir = -dir;
    }
    let t = params.uDetail * 32.0 + pt_rand(seed + vec2<f32>(0.0, 1.0)) * 0.1;
    let d = formula_de(p + n * params.uDetail * 4.0 + dir * t);
    return clamp(d / t, 0.0, 1.0);
}
`

const wgslLightingStubSource = `fn shade(p: vec3<f32>, n: vec3<f32>, rd: vec3<f32>, base: vec3<f32>) -> vec3<f32> {
    return base;
}
`

const wgslShadowSource = `fn soft_shadow(ro: vec3<f32>, rd: vec3<f32>, maxt: f32) -> f32 {
    var res = 1.0;
    var t = 0.01;
    for (var i = 0; i < SHADOW_STEPS; i = i + 1) {
        if (t >= maxt) {
            break;
        }
        let d = formula_de(ro + rd * t);
        if (d < 1e-5) {
            return 0.0;
        }
        res = min(res, params.uShadowSoftness * d / t);
        t = t + clamp(d, 0.005, 0.25);
    }
    return clamp(res, 0.0, 1.0);
}
`

const wgslShadowStubSource = `fn soft_shadow(ro: vec3<f32>, rd: vec3<f32>, maxt: f32) -> f32 {
    return 1.0;
}
`

const wgslColoringHeaderSource = `@group(0) @binding(1) var gradient_tex: texture_2d<f32>;
@group(0) @binding(2) var gradient_samp: sampler;
`

const wgslColoringSource = `fn palette_color(t: f32) -> vec3<f32> {
    // Row 0 of the LUT is the surface palette; the texture may carry more
    // gradient layers below it.
    let rows = f32(textureDimensions(gradient_tex).y);
    return textureSampleLevel(gradient_tex, gradient_samp, vec2<f32>(t, 0.5 / rows), 0.0).rgb;
}
`

// Non-lit variants carry no gradient texture binding, so the stub maps the
// trap value to a gray ramp instead of sampling.
const wgslColoringStubSource = `fn palette_color(t: f32) -> vec3<f32> {
    return vec3<f32>(t);
}
`

const wgslFogSource = `fn apply_fog(col: vec3<f32>, dist: f32) -> vec3<f32> {
    let f = exp(-params.uFog.a * dist);
    return mix(params.uFog.rgb, col, f);
}
`

const wgslFogStubSource = `fn apply_fog(col: vec3<f32>, dist: f32) -> vec3<f32> {
    return col;
}
`
